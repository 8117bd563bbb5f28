// Package model provides the data structures shared by the pipeline package
// and its options: the description of a step and its data contract, the links
// between steps, the parameter registry entries and the hook interface every
// pipeline option implements.
package model
