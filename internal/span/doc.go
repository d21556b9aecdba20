// Package span holds accepted entity spans and enforces the overlap policy
// between them.
//
// Policy, applied in visitation order (first come, first served):
//   - a span overlapping an accepted span with the same label is rejected;
//   - across different labels, strict nesting is accepted, identical bounds
//     keep the first span, any other overlap is rejected;
//   - with masking on, accepted characters are consumed: any overlap with
//     an accepted span is rejected, and the working copy is blanked.
package span
