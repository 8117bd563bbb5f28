// Package cluster samples a star cluster: a mass for every star drawn from an
// initial mass function, a position and velocity drawn from a six dimensional
// normal distribution in the heliocentric galactic frame, and the resulting
// sky coordinates and distances seen by the observer.
package cluster
