/*
Package ports defines the driven ports (interfaces) of the stepwise scheduler.

These interfaces decouple the executor from the host: how step bodies are
called, where finished run reports are kept, and how concurrent runs of one
pipeline are serialized across processes.

# Key Interfaces

  - Invoker: calls the body of a step with its resolved arguments.
  - ReportStore: persists finished run reports (memory, Redis).
  - DistributedLocker: serializes runs sharing a key across replicas.
*/
package ports
