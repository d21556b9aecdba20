// Package align turns a transcribed sentence and the structured record
// extracted from it into entity spans.
//
// The aligner walks the record in a fixed order, rewrites each value
// through the canonical table, searches it in the text with the configured
// strategy and offers the candidate to a span registry that enforces the
// overlap policy. Fields that produce no span are reported as diagnostics.
//
// # Visiting order
//
// For every record, fields are visited in three passes:
//  1. scalar and contextual fields, in record order;
//  2. nested records and lists outside the group keys, in record order;
//  3. group keys, in the configured order, each element in list order.
//
// Earlier fields win contested text, so the order is part of the contract.
// Records decoded from JSON or YAML keep document order; records built from
// Go maps follow the label map's declaration order.
package align
