// Package model defines the shared data types of the query coordination
// layer: globally unique document identifiers, scored candidates, and the
// per-clause and combined result shapes passed between merge stages.
package model
