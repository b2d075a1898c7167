package roster

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MyGroup is the group of the user currently looking at the store.
const MyGroup GroupKey = "myGroup"

const colleagueKeyPrefix = "colleague:"

// GroupKey identifies a group of students for the day.
type GroupKey string

func (k GroupKey) IsColleague() bool { return strings.HasPrefix(string(k), colleagueKeyPrefix) }

// Group maps a GroupKey to the staff member owning it.
type Group struct {
	Key     GroupKey `json:"key"`
	OwnerID string   `json:"owner_id"`
	Name    string   `json:"name"`
}

// GroupTable is the explicit registry of the groups a Store may hold.
type GroupTable struct {
	groups  []Group
	byKey   map[GroupKey]int
	byOwner map[string]GroupKey
}

func NewGroupTable(ownerID string) *GroupTable {
	gt := &GroupTable{
		byKey:   make(map[GroupKey]int),
		byOwner: make(map[string]GroupKey),
	}
	gt.add(Group{Key: MyGroup, OwnerID: ownerID, Name: "My group"})
	return gt
}

func (gt *GroupTable) add(g Group) {
	gt.byKey[g.Key] = len(gt.groups)
	gt.byOwner[g.OwnerID] = g.Key
	gt.groups = append(gt.groups, g)
}

// AddColleague registers the group of a colleague and returns its key.
// Registering the same colleague twice returns the existing key.
func (gt *GroupTable) AddColleague(userID, email string) GroupKey {
	if key, ok := gt.byOwner[userID]; ok {
		return key
	}
	key := GroupKey(colleagueKeyPrefix + userID)
	gt.add(Group{Key: key, OwnerID: userID, Name: GroupName(email, userID)})
	return key
}

func (gt *GroupTable) Lookup(key GroupKey) (Group, bool) {
	idx, ok := gt.byKey[key]
	if !ok {
		return Group{}, false
	}
	return gt.groups[idx], true
}

func (gt *GroupTable) KeyFor(ownerID string) (GroupKey, bool) {
	key, ok := gt.byOwner[ownerID]
	return key, ok
}

// Groups returns the registered groups, MyGroup first then colleagues in registration order.
func (gt *GroupTable) Groups() []Group {
	res := make([]Group, len(gt.groups))
	copy(res, gt.groups)
	return res
}

// GroupName builds "<Local-part>'s group" out of an email, eg. "enes@skolan.se" -> "Enes's group".
func GroupName(email, fallback string) string {
	local := strings.SplitN(strings.TrimSpace(email), "@", 2)[0]
	if local == "" {
		local = fallback
	}
	r, size := utf8.DecodeRuneInString(local)
	if r == utf8.RuneError {
		return local + "'s group"
	}
	first := cases.Upper(language.Swedish).String(string(r))
	return first + local[size:] + "'s group"
}
