// Package jobqueue is a minimal in-memory gearman style job server that drives
// a queue.Persistence backend.
//
// Jobs are held in three priority lanes and handed out oldest first within a
// lane. Every accepted job is persisted before it becomes visible, and
// completion removes it from the backend. Restore repopulates the lanes from
// the backend after a restart. All calls into the backend are serialised by
// the server mutex.
package jobqueue
