/*
Package session implements step-wise execution of machines across calls.

A session is a paused run: the machine name, the input and the configuration
reached so far, persisted in a ports.SessionStore between steps. The Manager
serializes access to each session with a local reference-counted mutex and,
when configured, a ports.DistributedLocker, so that several replicas can share
one Redis store.
*/
package session
