// Package model defines the value types shared by every stage of table
// reconstruction.
//
// # Fragments
//
// A [Fragment] is a single positioned piece of text. Its [BBox] is top-left
// based in a downward-growing coordinate space, the same space selection
// rectangles are drawn in. Fragments are plain values and are never mutated
// once produced.
//
// # Geometry
//
//   - [Rect] - canonical selection rectangle with inclusive containment
//   - [NormalizeDrag] - converts an anchor plus signed delta into a [Rect]
//   - [Matrix] - 2D affine transform, [PlaceText] maps a text item's native
//     transform through a page viewport into a top-left box
//   - [Selection], [View] - drag, resize and pan/zoom helpers for the
//     rectangle a user draws over a page
//
// # Tables
//
// [Table] is a rectangular grid of strings with CSV, TSV and Markdown
// export.
package model
