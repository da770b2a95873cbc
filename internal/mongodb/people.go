package mongodb

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/campus-placement/internal/store"
	"github.com/jonathan/campus-placement/internal/types"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// --- actors ---

func (s *Store) CreateActor(ctx context.Context, a *types.Actor) (string, error) {
	doc := newActorDoc(a, s.stamp(a.CreatedAt))
	if _, err := s.coll(actorsColl).InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", fmt.Errorf("failed to create actor %s: %w", a.Email, store.ErrDuplicate)
		}
		return "", fmt.Errorf("failed to create actor: %w", err)
	}
	return doc.ID.Hex(), nil
}

func (s *Store) findActor(ctx context.Context, filter bson.M) (*types.Actor, error) {
	var doc actorDoc
	if err := s.coll(actorsColl).FindOne(ctx, filter).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get actor: %w", err)
	}
	a := doc.record()
	return &a, nil
}

func (s *Store) GetActor(ctx context.Context, id string) (*types.Actor, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return s.findActor(ctx, bson.M{"_id": oid})
}

func (s *Store) GetActorByEmail(ctx context.Context, email string) (*types.Actor, error) {
	return s.findActor(ctx, bson.M{"email_lower": strings.ToLower(email)})
}

func actorFilter(f store.ActorFilter) bson.M {
	filter := bson.M{}
	if f.Role != "" {
		filter["role"] = string(f.Role)
	}
	if f.Status != "" {
		filter["status"] = string(f.Status)
	}
	return filter
}

func (s *Store) ListActors(ctx context.Context, f store.ActorFilter) ([]types.Actor, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	docs, err := findAll[actorDoc](ctx, s.coll(actorsColl), actorFilter(f), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list actors: %w", err)
	}
	return records[actorDoc, types.Actor](docs), nil
}

func (s *Store) CountActors(ctx context.Context, f store.ActorFilter) (int64, error) {
	n, err := s.coll(actorsColl).CountDocuments(ctx, actorFilter(f))
	if err != nil {
		return 0, fmt.Errorf("failed to count actors: %w", err)
	}
	return n, nil
}

func (s *Store) UpdateActorStatus(ctx context.Context, id string, from, to types.AccountStatus) (bool, error) {
	oid, err := parseID(id)
	if err != nil {
		return false, err
	}
	ok, err := matched(s.coll(actorsColl).UpdateOne(ctx,
		bson.M{"_id": oid, "status": string(from)},
		bson.M{"$set": bson.M{"status": string(to)}},
	))
	if err != nil {
		return false, fmt.Errorf("failed to update actor status: %w", err)
	}
	return ok, nil
}

// AssignDrive reports whether the actor exists; $addToSet keeps drives unique.
func (s *Store) AssignDrive(ctx context.Context, actorID, driveID string) (bool, error) {
	oid, err := parseID(actorID)
	if err != nil {
		return false, err
	}
	ok, err := matched(s.coll(actorsColl).UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$addToSet": bson.M{"assigned_drives": driveID}},
	))
	if err != nil {
		return false, fmt.Errorf("failed to assign drive: %w", err)
	}
	return ok, nil
}

func (s *Store) UnassignDrive(ctx context.Context, driveID string) (int64, error) {
	res, err := s.coll(actorsColl).UpdateMany(ctx,
		bson.M{"assigned_drives": driveID},
		bson.M{"$pull": bson.M{"assigned_drives": driveID}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to unassign drive: %w", err)
	}
	return res.ModifiedCount, nil
}

func (s *Store) DeleteActor(ctx context.Context, id string) (bool, error) {
	oid, err := parseID(id)
	if err != nil {
		return false, err
	}
	if _, err := s.coll(profilesColl).DeleteOne(ctx, bson.M{"_id": oid}); err != nil {
		return false, fmt.Errorf("failed to delete student profile: %w", err)
	}
	res, err := s.coll(actorsColl).DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, fmt.Errorf("failed to delete actor: %w", err)
	}
	return res.DeletedCount == 1, nil
}

// --- student profiles ---

func (s *Store) CreateProfile(ctx context.Context, p *types.StudentProfile) error {
	oid, err := parseID(p.StudentID)
	if err != nil {
		return err
	}
	status := p.PlacementStatus
	if status == "" {
		status = types.PlacementNotApplied
	}
	skills := p.Skills
	if skills == nil {
		skills = []string{}
	}
	doc := profileDoc{
		StudentID:       oid,
		Name:            p.Name,
		Department:      p.Department,
		RollNumber:      p.RollNumber,
		GPA:             p.GPA,
		Backlogs:        p.Backlogs,
		Skills:          skills,
		GitHub:          p.GitHub,
		LinkedIn:        p.LinkedIn,
		Portfolio:       p.Portfolio,
		PlacementStatus: string(status),
		CreatedAt:       s.stamp(p.CreatedAt),
	}
	if _, err := s.coll(profilesColl).InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("failed to create profile for %s: %w", p.StudentID, store.ErrDuplicate)
		}
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

func (s *Store) GetProfile(ctx context.Context, studentID string) (*types.StudentProfile, error) {
	oid, err := parseID(studentID)
	if err != nil {
		return nil, err
	}
	var doc profileDoc
	if err := s.coll(profilesColl).FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	p := doc.record()
	return &p, nil
}

func (s *Store) UpdateProfile(ctx context.Context, studentID string, u store.ProfileUpdate) (bool, error) {
	oid, err := parseID(studentID)
	if err != nil {
		return false, err
	}
	set := bson.M{}
	if u.Name != nil {
		set["name"] = *u.Name
	}
	if u.Department != nil {
		set["department"] = *u.Department
	}
	if u.GPA != nil {
		set["gpa"] = *u.GPA
	}
	if u.Backlogs != nil {
		set["backlogs"] = *u.Backlogs
	}
	if u.Skills != nil {
		skills := *u.Skills
		if skills == nil {
			skills = []string{}
		}
		set["skills"] = skills
	}
	if u.GitHub != nil {
		set["github"] = *u.GitHub
	}
	if u.LinkedIn != nil {
		set["linkedin"] = *u.LinkedIn
	}
	if u.Portfolio != nil {
		set["portfolio"] = *u.Portfolio
	}
	return s.updateByID(ctx, profilesColl, oid, set)
}

func profileFilter(f store.ProfileFilter) bson.M {
	filter := bson.M{}
	if f.MinGPA != nil {
		filter["gpa"] = bson.M{"$gte": *f.MinGPA}
	}
	if f.MaxBacklogs != nil {
		filter["backlogs"] = bson.M{"$lte": *f.MaxBacklogs}
	}
	if f.PlacementStatus != "" {
		filter["placement_status"] = string(f.PlacementStatus)
	}
	return filter
}

func (s *Store) ListProfiles(ctx context.Context, f store.ProfileFilter) ([]types.StudentProfile, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	docs, err := findAll[profileDoc](ctx, s.coll(profilesColl), profileFilter(f), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	return records[profileDoc, types.StudentProfile](docs), nil
}

func (s *Store) CountProfiles(ctx context.Context, f store.ProfileFilter) (int64, error) {
	n, err := s.coll(profilesColl).CountDocuments(ctx, profileFilter(f))
	if err != nil {
		return 0, fmt.Errorf("failed to count profiles: %w", err)
	}
	return n, nil
}

func (s *Store) SetPlacementStatus(ctx context.Context, studentID string, from, to types.PlacementStatus) (bool, error) {
	oid, err := parseID(studentID)
	if err != nil {
		return false, err
	}
	ok, err := matched(s.coll(profilesColl).UpdateOne(ctx,
		bson.M{"_id": oid, "placement_status": string(from)},
		bson.M{"$set": bson.M{"placement_status": string(to)}},
	))
	if err != nil {
		return false, fmt.Errorf("failed to set placement status: %w", err)
	}
	return ok, nil
}

func (s *Store) CountByDepartment(ctx context.Context) (map[string]int64, error) {
	cur, err := s.coll(profilesColl).Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$department"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to count by department: %w", err)
	}
	var groups []struct {
		Department string `bson:"_id"`
		Count      int64  `bson:"count"`
	}
	if err := cur.All(ctx, &groups); err != nil {
		return nil, fmt.Errorf("failed to decode department counts: %w", err)
	}

	out := make(map[string]int64, len(groups))
	for _, g := range groups {
		out[g.Department] += g.Count
	}
	return out, nil
}
