package staff

import (
	"context"
	"fmt"
	"time"

	"cruiseops/db"
	"cruiseops/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store holds staff users, groups, memberships and announcements of a tenant. Get
// methods return nil when nothing matches.
type Store interface {
	InsertUser(ctx context.Context, tenant string, u models.StaffUser) error
	ListUsers(ctx context.Context, tenant string) ([]models.StaffUser, error)
	GetUser(ctx context.Context, tenant, id string) (*models.StaffUser, error)
	GetUserByEmail(ctx context.Context, tenant, email string) (*models.StaffUser, error)
	ReplaceUser(ctx context.Context, tenant string, u models.StaffUser) error

	InsertGroup(ctx context.Context, tenant string, g models.StaffGroup) error
	ListGroups(ctx context.Context, tenant string) ([]models.StaffGroup, error)
	GetGroup(ctx context.Context, tenant, id string) (*models.StaffGroup, error)
	ReplaceGroup(ctx context.Context, tenant string, g models.StaffGroup) error

	InsertMember(ctx context.Context, tenant string, m models.GroupMember) error
	ListMembers(ctx context.Context, tenant, groupID string) ([]models.GroupMember, error)
	DeleteMember(ctx context.Context, tenant, groupID, userID string) (bool, error)

	InsertAnnouncement(ctx context.Context, tenant string, a models.Announcement) error
	// ActiveAnnouncements returns announcements without expiry or expiring after now,
	// newest first.
	ActiveAnnouncements(ctx context.Context, tenant string, now time.Time) ([]models.Announcement, error)
	GetAnnouncement(ctx context.Context, tenant, id string) (*models.Announcement, error)
	MarkRead(ctx context.Context, tenant string, r models.AnnouncementRead) error
	ReadIDs(ctx context.Context, tenant, userID string) (map[string]bool, error)
}

type MongoStore struct {
	m *db.Mongo
}

func NewMongoStore(m *db.Mongo) *MongoStore {
	return &MongoStore{m: m}
}

func (s *MongoStore) coll(tenant, name string) *mongo.Collection {
	return s.m.Tenant(tenant).Collection(name)
}

func (s *MongoStore) InsertUser(ctx context.Context, tenant string, u models.StaffUser) error {
	return db.Insert(ctx, s.coll(tenant, db.StaffUsersCollection), u, "Staff email already exists")
}

func (s *MongoStore) ListUsers(ctx context.Context, tenant string) ([]models.StaffUser, error) {
	opts := options.Find().SetSort(bson.D{{Key: "email", Value: 1}})
	return db.FindAll[models.StaffUser](ctx, s.coll(tenant, db.StaffUsersCollection), bson.M{}, opts)
}

func (s *MongoStore) GetUser(ctx context.Context, tenant, id string) (*models.StaffUser, error) {
	return db.FindOne[models.StaffUser](ctx, s.coll(tenant, db.StaffUsersCollection), bson.M{"_id": id})
}

func (s *MongoStore) GetUserByEmail(ctx context.Context, tenant, email string) (*models.StaffUser, error) {
	return db.FindOne[models.StaffUser](ctx, s.coll(tenant, db.StaffUsersCollection), bson.M{"email": email})
}

func (s *MongoStore) ReplaceUser(ctx context.Context, tenant string, u models.StaffUser) error {
	_, err := db.Replace(ctx, s.coll(tenant, db.StaffUsersCollection), u.ID, u, "Staff email already exists")
	return err
}

func (s *MongoStore) InsertGroup(ctx context.Context, tenant string, g models.StaffGroup) error {
	return db.Insert(ctx, s.coll(tenant, db.StaffGroupsCollection), g, "Group code already exists")
}

func (s *MongoStore) ListGroups(ctx context.Context, tenant string) ([]models.StaffGroup, error) {
	opts := options.Find().SetSort(bson.D{{Key: "code", Value: 1}})
	return db.FindAll[models.StaffGroup](ctx, s.coll(tenant, db.StaffGroupsCollection), bson.M{}, opts)
}

func (s *MongoStore) GetGroup(ctx context.Context, tenant, id string) (*models.StaffGroup, error) {
	return db.FindOne[models.StaffGroup](ctx, s.coll(tenant, db.StaffGroupsCollection), bson.M{"_id": id})
}

func (s *MongoStore) ReplaceGroup(ctx context.Context, tenant string, g models.StaffGroup) error {
	_, err := db.Replace(ctx, s.coll(tenant, db.StaffGroupsCollection), g.ID, g, "Group code already exists")
	return err
}

func (s *MongoStore) InsertMember(ctx context.Context, tenant string, m models.GroupMember) error {
	return db.Insert(ctx, s.coll(tenant, db.GroupMembersCollection), m, "User is already a member of this group")
}

func (s *MongoStore) ListMembers(ctx context.Context, tenant, groupID string) ([]models.GroupMember, error) {
	opts := options.Find().SetSort(bson.D{{Key: "added_at", Value: 1}})
	return db.FindAll[models.GroupMember](ctx, s.coll(tenant, db.GroupMembersCollection), bson.M{"group_id": groupID}, opts)
}

func (s *MongoStore) DeleteMember(ctx context.Context, tenant, groupID, userID string) (bool, error) {
	res, err := s.coll(tenant, db.GroupMembersCollection).DeleteOne(ctx, bson.M{"group_id": groupID, "user_id": userID})
	if err != nil {
		return false, fmt.Errorf("delete member: %w", err)
	}
	return res.DeletedCount > 0, nil
}

func (s *MongoStore) InsertAnnouncement(ctx context.Context, tenant string, a models.Announcement) error {
	return db.Insert(ctx, s.coll(tenant, db.AnnouncementsCollection), a, "")
}

func (s *MongoStore) ActiveAnnouncements(ctx context.Context, tenant string, now time.Time) ([]models.Announcement, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"expires_at": bson.M{"$exists": false}},
		bson.M{"expires_at": nil},
		bson.M{"expires_at": bson.M{"$gt": now}},
	}}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return db.FindAll[models.Announcement](ctx, s.coll(tenant, db.AnnouncementsCollection), filter, opts)
}

func (s *MongoStore) GetAnnouncement(ctx context.Context, tenant, id string) (*models.Announcement, error) {
	return db.FindOne[models.Announcement](ctx, s.coll(tenant, db.AnnouncementsCollection), bson.M{"_id": id})
}

func (s *MongoStore) MarkRead(ctx context.Context, tenant string, r models.AnnouncementRead) error {
	_, err := s.coll(tenant, db.AnnouncementReadsCollection).UpdateOne(ctx,
		bson.M{"announcement_id": r.AnnouncementID, "user_id": r.UserID},
		bson.M{"$setOnInsert": bson.M{"read_at": r.ReadAt}},
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mark announcement read: %w", err)
	}
	return nil
}

func (s *MongoStore) ReadIDs(ctx context.Context, tenant, userID string) (map[string]bool, error) {
	rows, err := db.FindAll[models.AnnouncementRead](ctx, s.coll(tenant, db.AnnouncementReadsCollection), bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(rows))
	for _, r := range rows {
		out[r.AnnouncementID] = true
	}
	return out, nil
}
