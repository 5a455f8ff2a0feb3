/*
Package domain contains the core models of the stepwise scheduler.

It defines the step descriptors the host hands to the scheduler, the predicate
algebra used to compare their preconditions and postconditions, the recipes the
scheduler proves sound, and the reports a run produces. This package is kept
pure and free of I/O.

# Key Entities

  - Predicate: Equal/NotEqual comparison of one field (or the whole value) of a type against a literal.
  - Step: a typed unit of work with parameters, a result type, declarations, and a body.
  - Param: either bound (read by name from the run inputs) or dynamic (taken from earlier results, filtered by guards).
  - Recipe: one total order of all steps in which every step feeds the next.
  - Report: results of every recipe executed by one run.
*/
package domain
