package users

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPolicy_ProtectsSystemFields(t *testing.T) {
	policy := DefaultPolicy()
	target := User{
		"email":    "alice@example.com",
		"password": "hashed",
		"role":     map[string]any{"director": false},
	}

	filtered := policy.FilterUpdates(target, Updates{
		"$set": {
			"email":         "evil@example.com",
			"password":      "new-hash",
			"role.director": true,
			"token":         "forged",
			"_id":           "other",
			"nickname":      "Al",
		},
	})

	require.Contains(t, filtered, "$set")
	assert.Equal(t, map[string]any{"nickname": "Al"}, filtered["$set"])
}

func TestFilterUpdates_DropsEmptyGroups(t *testing.T) {
	policy := DefaultPolicy()
	target := User{"email": "alice@example.com"}

	filtered := policy.FilterUpdates(target, Updates{
		"$set": {"password": "new-hash"},
		"$inc": {"visits": 1},
	})

	assert.NotContains(t, filtered, "$set")
	assert.Equal(t, map[string]any{"visits": 1}, filtered["$inc"])
}

func TestFilterUpdates_UnmatchedFieldsAllowed(t *testing.T) {
	policy := DefaultPolicy()
	filtered := policy.FilterUpdates(User{}, Updates{
		"$set": {"registration.shirt_size": "M", "bio": "hi"},
	})

	assert.Equal(t, map[string]any{"registration.shirt_size": "M", "bio": "hi"}, filtered["$set"])
}

func TestFilterUpdates_ConjunctionOverMatches(t *testing.T) {
	// Two rules match the same field; the change goes through only when
	// both allow it.
	allowStrings := func(old, proposed any, op string) bool {
		_, ok := proposed.(string)
		return ok
	}
	allowSet := func(old, proposed any, op string) bool {
		return op == "$set"
	}
	policy := NewPolicy(
		MustRule(`profile\..*`, allowStrings),
		MustRule(`profile\.name`, allowSet),
	)

	filtered := policy.FilterUpdates(User{}, Updates{
		"$set":  {"profile.name": "Alice", "profile.age": 30},
		"$push": {"profile.name": "Bob"},
	})

	assert.Equal(t, map[string]any{"profile.name": "Alice"}, filtered["$set"])
	assert.NotContains(t, filtered, "$push")
}

func TestFilterUpdates_FullNameMatchOnly(t *testing.T) {
	// Patterns anchor to the whole field name; a prefix match is not
	// enough to trigger a rule.
	policy := NewPolicy(MustRule(`email`, denyAlways))

	filtered := policy.FilterUpdates(User{}, Updates{
		"$set": {"email_preferences": "weekly", "email": "x@example.com"},
	})

	assert.Equal(t, map[string]any{"email_preferences": "weekly"}, filtered["$set"])
}

func TestFilterUpdates_OldValuePassedToPredicate(t *testing.T) {
	var sawOld any
	spy := func(old, proposed any, op string) bool {
		sawOld = old
		return true
	}
	policy := NewPolicy(MustRule(`registration\.status`, spy))
	target := User{
		"registration": map[string]any{"status": "pending"},
	}

	policy.FilterUpdates(target, Updates{"$set": {"registration.status": "confirmed"}})

	assert.Equal(t, "pending", sawOld)
}

func TestFilterUpdates_DoesNotMutateInputs(t *testing.T) {
	policy := DefaultPolicy()
	updates := Updates{"$set": {"password": "x", "bio": "hi"}}

	policy.FilterUpdates(User{}, updates)

	assert.Len(t, updates["$set"], 2, "input updates must not be mutated")
}

func TestExtend_AppendsRules(t *testing.T) {
	base := DefaultPolicy()
	extended := base.Extend(MustRule(`locked\..*`, denyAlways))

	filtered := extended.FilterUpdates(User{}, Updates{
		"$set": {"locked.flag": true, "open.flag": true},
	})

	assert.Equal(t, map[string]any{"open.flag": true}, filtered["$set"])

	// The base policy is unchanged.
	baseFiltered := base.FilterUpdates(User{}, Updates{"$set": {"locked.flag": true}})
	assert.Equal(t, map[string]any{"locked.flag": true}, baseFiltered["$set"])
}

func TestLookupDotted(t *testing.T) {
	doc := User{
		"role": map[string]any{"director": true},
		"name": "Alice",
	}

	value, ok := LookupDotted(doc, "role.director")
	require.True(t, ok)
	assert.Equal(t, true, value)

	_, ok = LookupDotted(doc, "role.missing")
	assert.False(t, ok)

	_, ok = LookupDotted(doc, "name.nested")
	assert.False(t, ok, "scalar values have no children")
}
