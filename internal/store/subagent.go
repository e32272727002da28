package store

import (
	"fmt"
	"time"

	"github.com/ok-agent/ok/internal/llm"
)

// maxAgentSessionAge is how long a sub-agent session snapshot is kept
// before Prune removes it.
const maxAgentSessionAge = 30 * 24 * time.Hour

// SubAgentSession is the persisted record of one sub-agent run: its
// identity and the full transcript it produced.
type SubAgentSession struct {
	AgentID         string        `json:"agent_id"`
	SubAgentType    string        `json:"subagent_type"`
	ParentSessionID string        `json:"parent_session_id"`
	CreatedAt       time.Time     `json:"created_at"`
	Transcript      []llm.Message `json:"transcript"`
}

// SubAgentStore persists one SubAgentSession per agent id as
// <user-config-dir>/ok/subagents/<agent_id>.json.
type SubAgentStore struct {
	dir   string
	clock Clock
}

// NewSubAgentStore opens the sub-agent session store rooted at the user
// config directory.
func NewSubAgentStore() (*SubAgentStore, error) {
	dir, err := baseDir("subagents")
	if err != nil {
		return nil, err
	}
	return &SubAgentStore{dir: dir, clock: time.Now}, nil
}

func (s *SubAgentStore) path(agentID string) string {
	return fmt.Sprintf("%s/%s.json", s.dir, agentID)
}

// Save creates or overwrites the snapshot for agentID.
func (s *SubAgentStore) Save(sess *SubAgentSession) error {
	if err := sanitizeKey(sess.AgentID); err != nil {
		return err
	}
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = s.clock()
	}
	return writeJSONFile(s.path(sess.AgentID), sess)
}

// Load returns the snapshot for agentID.
func (s *SubAgentStore) Load(agentID string) (*SubAgentSession, error) {
	if err := sanitizeKey(agentID); err != nil {
		return nil, err
	}
	var sess SubAgentSession
	if err := readJSONFile(s.path(agentID), &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// AgentIDs lists every agent id with a persisted snapshot.
func (s *SubAgentStore) AgentIDs() ([]string, error) {
	return listJSONKeys(s.dir)
}

// Prune deletes snapshots older than maxAgentSessionAge, returning the
// number of files removed. Corrupt or unreadable files are skipped, not
// removed, so a malformed snapshot never silently vanishes.
func (s *SubAgentStore) Prune() (int, error) {
	ids, err := s.AgentIDs()
	if err != nil {
		return 0, err
	}
	cutoff := s.clock().Add(-maxAgentSessionAge)
	removed := 0
	for _, id := range ids {
		sess, err := s.Load(id)
		if err != nil {
			continue
		}
		if sess.CreatedAt.Before(cutoff) {
			if err := removeFile(s.path(id)); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}
