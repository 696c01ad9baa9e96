// Package kafkatransport carries events between systems via Apache Kafka.
//
// A Publisher is a process that writes every event it receives to a topic. A
// Consumer reads those events back and delivers them to a model, committing
// each message only after it has been handled. Messages that are not committed
// are redelivered, so models fed by a Consumer must tolerate seeing an event
// more than once.
package kafkatransport
