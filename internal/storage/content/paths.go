package content

// Storage key layout. These paths are the wire contract for durability and
// backward compatibility; do not change them without a migration.
//
//	{tenant}/workspaces/{workspaceId}.json
//	{tenant}/workspaces-index.json
//	{tenant}/canvases/{canvasId}.json
//	{tenant}/canvases-index.json
//	{tenant}/canvas-data/{canvasId}.json          bundle (current format)
//	{tenant}/canvas-data/{canvasId}/{nodeId}.json legacy per-node files
//	{tenant}/settings/ai.json

const (
	workspaceKind = "workspaces"
	canvasKind    = "canvases"
)

func workspacePath(tenant, id string) string {
	return tenant + "/workspaces/" + id + ".json"
}

func canvasPath(tenant, id string) string {
	return tenant + "/canvases/" + id + ".json"
}

func bundlePath(tenant, canvasID string) string {
	return tenant + "/canvas-data/" + canvasID + ".json"
}

func legacyNodePrefix(tenant, canvasID string) string {
	return tenant + "/canvas-data/" + canvasID + "/"
}

// LegacyNodePath returns the key of a pre-bundling per-node document. The
// migration tool writes this layout; the bundler only reads it.
func LegacyNodePath(tenant, canvasID, nodeID string) string {
	return legacyNodePrefix(tenant, canvasID) + nodeID + ".json"
}

func settingsPath(tenant string) string {
	return tenant + "/settings/ai.json"
}
