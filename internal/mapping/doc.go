// Package mapping provides the aligner's data tables and their file format:
// the ordered field-to-label map, the canonical value table, record paths,
// and YAML/TOML configuration loading and validation.
//
// # Schema Overview
//
// The configuration file has the following structure:
//
//	version: "1"
//	strategy: exact          # fuzzy (default) | exact
//	threshold: 80            # fuzzy only
//	mask: true               # default: on for exact, off for fuzzy
//	fold_accents: false
//	citation_prefix: true    # search "articolo 6" before "6"
//	plate_fields: targa
//	citation_fields: [articolo, comma, codice]
//	group_keys: [lista_veicoli, violazioni]
//	ignore_labels: [VEICOLO_TELAIO, VEICOLO_MASSA]
//	ignore_fields: [lista_veicoli[].note_veicolo]
//	label_map:               # document order is the visiting order
//	  targa: VEICOLO_TARGA
//	  punti: PUNTI_DECURTATI
//	canonical:
//	  - label: PUNTI_DECURTATI
//	    phrase: "2"
//	    canonical: due
//	use_defaults: true       # merge over the built-in Italian tables
//
// The same keys are accepted in TOML; a [label_map] table keeps the order
// of its keys as written.
//
// # Path Syntax
//
// Record paths support:
//   - Simple fields: "targa"
//   - Nested fields: "verbale.targa"
//   - Any group element: "violazioni[]"
//   - One group element: "violazioni[0].articolo"
package mapping
