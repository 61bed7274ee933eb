package mongo

import "go.mongodb.org/mongo-driver/mongo"

const (
	usersCollection      = "users"
	eventsCollection     = "events"
	magicLinksCollection = "magic_links"
)

// Repository bundles the per-collection repositories over one database
// handle.
type Repository struct {
	users      *UsersRepository
	events     *EventsRepository
	magicLinks *MagicLinksRepository
}

func NewRepository(db *mongo.Database) *Repository {
	return &Repository{
		users:      &UsersRepository{coll: db.Collection(usersCollection)},
		events:     &EventsRepository{coll: db.Collection(eventsCollection)},
		magicLinks: &MagicLinksRepository{coll: db.Collection(magicLinksCollection)},
	}
}

func (r *Repository) Users() *UsersRepository           { return r.users }
func (r *Repository) Events() *EventsRepository         { return r.events }
func (r *Repository) MagicLinks() *MagicLinksRepository { return r.magicLinks }
