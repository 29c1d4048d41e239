// Package hcl loads job declarations from HCL files.
//
// A file holds any number of job blocks:
//
//	job "diamond" {
//	  context = { x = 2 }
//
//	  task "A" {
//	    func = "arith.identity"
//	    param "n" { context = "x" }
//	  }
//
//	  task "C" {
//	    func = "arith.sum"
//	    param "a" { link_from = "A" }
//	    param "b" { link_from = "B" }
//	  }
//	}
//
// The func attribute names a function in the registry. Param blocks are
// matched to the function's parameters by position; their label only
// documents the binding. Each param sets exactly one of context or
// link_from.
package hcl
