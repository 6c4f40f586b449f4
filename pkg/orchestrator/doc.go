// Package orchestrator owns form values, touched markers, and the validation
// error tree, and sequences validator invocations for change, blur, submit,
// and explicit triggers. Each triggered pass carries a generation number;
// results arriving after their generation has been superseded are discarded,
// so overlapping asynchronous validators resolve to "last trigger wins"
// rather than "last arrival wins".
package orchestrator
