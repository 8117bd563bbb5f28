// Package pipeline provides a sequential pipeline of named steps over a shared data record.
//
// Each step declares the keys it reads and writes and transforms an immutable Data value into a new one. The
// pipeline copies its input once per run, checks that every key a step requires is produced by the input or an
// earlier step before anything executes, and then runs the steps in registration order.
//
// The pipeline stops on the first error returned by a step. The error is wrapped with the step name and no partial
// result is returned.
//
// Steps that expose parameters through Params can be reconfigured by name with SetParams, either with structured
// assignments or with "step__param" keys.
//
// Independent pipelines, each owning its steps, can be executed in parallel with RunEnsemble.
package pipeline
