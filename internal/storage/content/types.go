package content

import (
	"encoding/json"
	"fmt"
	"time"
)

// Workspace groups canvases for one tenant.
//
// CanvasIDs is a denormalized back-reference to child canvases. It is owned
// by the API layer: canvas creation and deletion do not touch it, so callers
// must keep it consistent themselves.
type Workspace struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Icon        string    `json:"icon,omitempty"`
	Description string    `json:"description,omitempty"`
	CanvasIDs   []string  `json:"canvasIds"`
	Tags        []string  `json:"tags,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Order       int       `json:"order,omitempty"`
}

// EntryID implements [infra.Entry]. Workspaces are small, so the full
// document doubles as its own index projection.
func (w Workspace) EntryID() string { return w.ID }

// WorkspacePatch holds the fields of a partial workspace update.
// Nil fields are left unchanged (shallow merge).
type WorkspacePatch struct {
	Name        *string   `json:"name,omitempty"`
	Icon        *string   `json:"icon,omitempty"`
	Description *string   `json:"description,omitempty"`
	CanvasIDs   *[]string `json:"canvasIds,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
	Order       *int      `json:"order,omitempty"`
}

// Canvas is one research canvas: node/edge metadata plus viewport.
//
// On disk the per-node payloads are not stored inline; see [NodeDataBundler].
type Canvas struct {
	ID          string    `json:"id"`
	WorkspaceID string    `json:"workspaceId"`
	Title       string    `json:"title"`
	Template    string    `json:"template,omitempty"`
	Modules     []string  `json:"modules,omitempty"`
	Nodes       []*Node   `json:"nodes"`
	Edges       []Edge    `json:"edges"`
	Viewport    *Viewport `json:"viewport,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CanvasPatch holds the fields of a partial canvas update.
// Nil fields are left unchanged (shallow merge).
type CanvasPatch struct {
	WorkspaceID *string    `json:"workspaceId,omitempty"`
	Title       *string    `json:"title,omitempty"`
	Template    *string    `json:"template,omitempty"`
	Modules     *[]string  `json:"modules,omitempty"`
	Nodes       *[]*Node   `json:"nodes,omitempty"`
	Edges       *[]Edge    `json:"edges,omitempty"`
	Viewport    *Viewport  `json:"viewport,omitempty"`
}

// Node is one canvas node. Data holds the potentially multi-kilobyte payload
// and is treated as opaque by the storage layer; DataRef is the pre-bundling
// pointer to a standalone per-node document and survives only until the next
// hydration.
type Node struct {
	ID       string          `json:"id"`
	Kind     string          `json:"type,omitempty"`
	Position *Point          `json:"position,omitempty"`
	Width    float64         `json:"width,omitempty"`
	Height   float64         `json:"height,omitempty"`
	Data     json.RawMessage `json:"data,omitempty"`
	DataRef  string          `json:"_dataRef,omitempty"`
}

// Point is a canvas coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Edge connects two canvas nodes.
type Edge struct {
	ID     string          `json:"id"`
	Source string          `json:"source"`
	Target string          `json:"target"`
	Label  string          `json:"label,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// Viewport is the last pan/zoom state of a canvas.
type Viewport struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Zoom float64 `json:"zoom"`
}

// CanvasIndexEntry is the canvas projection kept in the per-tenant index.
// It deliberately excludes nodes and edges so listing canvases never reads
// full canvas bodies.
type CanvasIndexEntry struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	WorkspaceID string    `json:"workspaceId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	NodeCount   int       `json:"nodeCount"`
}

// EntryID implements [infra.Entry].
func (e CanvasIndexEntry) EntryID() string { return e.ID }

// NodeData is the polymorphic per-node payload, discriminated by its "type"
// tag. The storage layer never looks inside payloads; this union exists for
// consumers that do (validation, rendering, the AI pipeline).
type NodeData interface {
	isNodeData()
}

// TextData is a text note payload.
type TextData struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// TableData is a spreadsheet payload.
type TableData struct {
	Type    string     `json:"type"`
	Columns []string   `json:"columns,omitempty"`
	Rows    [][]string `json:"rows,omitempty"`
}

// ChartData is a chart payload.
type ChartData struct {
	Type    string          `json:"type"`
	Kind    string          `json:"kind,omitempty"`
	Series  json.RawMessage `json:"series,omitempty"`
	Options json.RawMessage `json:"options,omitempty"`
}

// ImageData is an image payload.
type ImageData struct {
	Type string `json:"type"`
	URL  string `json:"url"`
	Alt  string `json:"alt,omitempty"`
}

// PDFData references an uploaded PDF and its extracted markdown.
type PDFData struct {
	Type     string `json:"type"`
	URL      string `json:"url"`
	Title    string `json:"title,omitempty"`
	Markdown string `json:"markdown,omitempty"`
	Page     int    `json:"page,omitempty"`
}

func (TextData) isNodeData()  {}
func (TableData) isNodeData() {}
func (ChartData) isNodeData() {}
func (ImageData) isNodeData() {}
func (PDFData) isNodeData()   {}

// Node payload kinds.
const (
	NodeKindText  = "text"
	NodeKindTable = "table"
	NodeKindChart = "chart"
	NodeKindImage = "image"
	NodeKindPDF   = "pdf"
)

// DecodeNodeData decodes a raw payload into its tagged variant.
func DecodeNodeData(raw json.RawMessage) (NodeData, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("failed to decode node data: %w", err)
	}
	var v NodeData
	switch probe.Type {
	case NodeKindText:
		v = &TextData{}
	case NodeKindTable:
		v = &TableData{}
	case NodeKindChart:
		v = &ChartData{}
	case NodeKindImage:
		v = &ImageData{}
	case NodeKindPDF:
		v = &PDFData{}
	default:
		return nil, fmt.Errorf("unknown node data type %q", probe.Type)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return nil, fmt.Errorf("failed to decode %s node data: %w", probe.Type, err)
	}
	return v, nil
}

// defaultNodeData is the payload substituted for a node that has lost both
// its bundle entry and its legacy document, so the UI never renders a broken
// node.
func defaultNodeData() json.RawMessage {
	return json.RawMessage(`{"type":"text","title":"","content":""}`)
}
