// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package reflection describes the layout of a linked shader program.
//
// The reflection graph is produced by the frontend after linking and is
// consumed read-only by the parameter walker. Every node carries a closed
// [Kind] tag; consumers switch over it exhaustively instead of relying on
// dynamic type assertions.
//
// Offsets are reported per [Category]. The same variable may occupy bytes in
// uniform memory, a slot in a descriptor table, a register space, or a vertex
// input location, and each of those is traced independently:
//
//	v.Offset(reflection.CategoryUniform)             // byte offset in the parent
//	v.Offset(reflection.CategoryDescriptorTableSlot) // binding index
//	v.Space(reflection.CategoryDescriptorTableSlot)  // descriptor set / space
//
// The concrete node types ([TypeLayout], [VarLayout], [EntryPointLayout],
// [ProgramLayout]) are immutable once built and may be shared between
// goroutines.
package reflection
