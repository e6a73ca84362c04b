package entity

// Connection is a social page connected through the OAuth flow
type Connection struct {
	PageID   string `json:"page_id"`
	PageName string `json:"page_name"`
}

// DedupConnections drops rows without a page ID and collapses duplicates.
// A duplicate keeps the position of its first occurrence and the name of its last.
// Empty names fall back to the page ID.
func DedupConnections(rows []Connection) []Connection {
	out := make([]Connection, 0, len(rows))
	index := make(map[string]int)

	for _, row := range rows {
		if row.PageID == "" {
			continue
		}
		conn := Connection{PageID: row.PageID, PageName: row.PageName}
		if conn.PageName == "" {
			conn.PageName = conn.PageID
		}
		if i, ok := index[conn.PageID]; ok {
			out[i] = conn
			continue
		}
		index[conn.PageID] = len(out)
		out = append(out, conn)
	}

	return out
}

// ResolveSelectedPage picks the page used for publishing: the saved one when it
// is still connected, otherwise the first connected page, otherwise "".
func ResolveSelectedPage(pages []Connection, saved string) string {
	if len(pages) == 0 {
		return ""
	}
	if saved != "" {
		for _, p := range pages {
			if p.PageID == saved {
				return saved
			}
		}
	}
	return pages[0].PageID
}
