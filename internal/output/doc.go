// Package output turns a computed table view into bytes and sends them to a
// destination.
//
//   - Documents (document.go): the serializable snapshot of a view, with the
//     filtered forest, matched ids and the effective expansion state.
//
//   - Serialization (serializer.go): deterministic YAML and JSON encoding.
//
//   - Formats (registry.go): a name to [Encoder] registry used by the CLI's
//     --format flag.
//
//   - Writers (writer.go): [StdoutWriter] and [FileWriter] behind the
//     [Writer] interface.
package output
