package users

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// User is the stored user document. The schema is open: beyond a handful of
// well-known fields (email, password, role, token) clients may attach
// arbitrary nested data, so the document is carried as a map rather than a
// fixed struct.
type User map[string]any

// Updates groups proposed field changes by update operator, e.g.
// {"$set": {"registration.shirt_size": "M"}}.
type Updates = map[string]map[string]any

func (u User) Email() string {
	email, _ := u["email"].(string)
	return email
}

func (u User) Token() string {
	token, _ := u["token"].(string)
	return token
}

func (u User) PasswordHash() string {
	hash, _ := u["password"].(string)
	return hash
}

func (u User) IsDirector() bool {
	value, ok := LookupDotted(u, "role.director")
	if !ok {
		return false
	}
	director, _ := value.(bool)
	return director
}

// LookupDotted resolves a dotted path like "role.director" against a
// document. Nested values may arrive as map[string]any, bson.M or bson.D
// depending on how the document was decoded, so all three are handled.
func LookupDotted(doc any, path string) (any, bool) {
	current := doc
	for _, key := range strings.Split(path, ".") {
		switch node := current.(type) {
		case User:
			value, ok := node[key]
			if !ok {
				return nil, false
			}
			current = value
		case map[string]any:
			value, ok := node[key]
			if !ok {
				return nil, false
			}
			current = value
		case bson.M:
			value, ok := node[key]
			if !ok {
				return nil, false
			}
			current = value
		case bson.D:
			found := false
			for _, elem := range node {
				if elem.Key == key {
					current = elem.Value
					found = true
					break
				}
			}
			if !found {
				return nil, false
			}
		default:
			return nil, false
		}
	}
	return current, true
}
