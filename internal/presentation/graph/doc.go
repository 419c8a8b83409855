// Package graph turns topology snapshots into diagram descriptions.
//
// Build converts a flat list of segments into ordered node declarations and
// edges, resolving each edge's style with StyleFor. The resulting Description
// serializes to Mermaid flowchart syntax, addressing edge styles by position.
package graph
