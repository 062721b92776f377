// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package param defines the canonical parameter description a compiled
// shader exposes to the material and pipeline binding layer.
//
// Every reflected symbol maps to exactly one [Type]. Value types are chosen
// by [Classify] from the symbol's shape; resource types are chosen by the
// reflection walker from the binding range a resource occupies. The
// resulting [Info] records are collected in an insertion-ordered [Table]
// keyed by the dot-joined qualified name of the symbol.
package param
