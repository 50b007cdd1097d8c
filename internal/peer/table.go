package peer

// MaxPeers bounds the fixed-size peer table a pod holds (§3).
const MaxPeers = 8

// Peer is one entry in the discovery table (§3).
type Peer struct {
	MAC          MAC
	FirstSeenUs  int64
	LastSeenUs   int64
	BeaconCount  uint32
	LastRttUs    int64
	PingSent     bool
	PingSentAtUs int64
}

// Table is the fixed-size peer table (up to MaxPeers entries).
type Table struct {
	peers []Peer
}

// NewTable returns an empty table.
func NewTable() *Table { return &Table{peers: make([]Peer, 0, MaxPeers)} }

// Observe records a beacon/message from mac at now, adding a new entry
// (capped at MaxPeers) or updating an existing one's lastSeen/beaconCount.
func (t *Table) Observe(mac MAC, now int64, countsAsBeacon bool) *Peer {
	for i := range t.peers {
		if t.peers[i].MAC == mac {
			t.peers[i].LastSeenUs = now
			if countsAsBeacon {
				t.peers[i].BeaconCount++
			}
			return &t.peers[i]
		}
	}
	if len(t.peers) >= MaxPeers {
		return nil
	}
	count := uint32(0)
	if countsAsBeacon {
		count = 1
	}
	t.peers = append(t.peers, Peer{MAC: mac, FirstSeenUs: now, LastSeenUs: now, BeaconCount: count})
	return &t.peers[len(t.peers)-1]
}

// Get returns a pointer to the entry for mac, or nil.
func (t *Table) Get(mac MAC) *Peer {
	for i := range t.peers {
		if t.peers[i].MAC == mac {
			return &t.peers[i]
		}
	}
	return nil
}

// First returns the first-discovered peer, or nil if the table is empty.
func (t *Table) First() *Peer {
	if len(t.peers) == 0 {
		return nil
	}
	return &t.peers[0]
}

// All returns every known peer.
func (t *Table) All() []Peer {
	cp := make([]Peer, len(t.peers))
	copy(cp, t.peers)
	return cp
}
