package connpool

// Stats contains registry statistics
type Stats struct {
	Connections  int    `json:"connections"`
	Created      uint64 `json:"created"`
	Removed      uint64 `json:"removed"`
	Collisions   uint64 `json:"collisions"`
	OpenFailures uint64 `json:"open_failures"`
	NotFound     uint64 `json:"not_found"`
}

// Stats returns a snapshot of registry statistics
func (r *Registry[K, N]) Stats() Stats {
	return Stats{
		Connections:  r.connections.Size(),
		Created:      r.created.Load(),
		Removed:      r.removed.Load(),
		Collisions:   r.collisions.Load(),
		OpenFailures: r.openFailures.Load(),
		NotFound:     r.notFound.Load(),
	}
}
