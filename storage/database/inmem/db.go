// Package inmemdb provides map-backed repositories for local development
// and the endpoint test suite. Data does not survive restarts.
package inmemdb

import (
	"sync"

	"github.com/trezcool/malezi/core/child"
	"github.com/trezcool/malezi/core/message"
	"github.com/trezcool/malezi/core/milestone"
	"github.com/trezcool/malezi/core/moderation"
	"github.com/trezcool/malezi/core/observation"
	"github.com/trezcool/malezi/core/shift"
	appsync "github.com/trezcool/malezi/core/sync"
	"github.com/trezcool/malezi/core/user"
)

type DB struct {
	mutex sync.RWMutex

	users         map[string]*user.User
	families      map[string]*child.Family
	members       map[string][]child.Membership // familyID -> members
	assignments   map[string][]child.Assignment // familyID -> assignments
	children      map[string]*child.Child
	observations  map[string]*observation.Observation
	milestones    map[string]*milestone.Milestone
	achievements  map[string]*milestone.Achievement
	conversations map[string]*message.Conversation
	messages      map[string]*message.Message
	shifts        map[string]*shift.Shift
	flags         map[string]*moderation.Flag
	syncLog       map[string]*appsync.LogEntry
}

func NewDB() *DB {
	return &DB{
		users:         make(map[string]*user.User),
		families:      make(map[string]*child.Family),
		members:       make(map[string][]child.Membership),
		assignments:   make(map[string][]child.Assignment),
		children:      make(map[string]*child.Child),
		observations:  make(map[string]*observation.Observation),
		milestones:    make(map[string]*milestone.Milestone),
		achievements:  make(map[string]*milestone.Achievement),
		conversations: make(map[string]*message.Conversation),
		messages:      make(map[string]*message.Message),
		shifts:        make(map[string]*shift.Shift),
		flags:         make(map[string]*moderation.Flag),
		syncLog:       make(map[string]*appsync.LogEntry),
	}
}
