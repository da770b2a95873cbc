package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/jonathan/campus-placement/internal/store"
	"github.com/jonathan/campus-placement/internal/types"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// updateByID applies set to one document. An empty set only checks existence.
func (s *Store) updateByID(ctx context.Context, coll string, oid primitive.ObjectID, set bson.M) (bool, error) {
	if len(set) == 0 {
		n, err := s.coll(coll).CountDocuments(ctx, bson.M{"_id": oid}, options.Count().SetLimit(1))
		if err != nil {
			return false, fmt.Errorf("failed to look up %s: %w", coll, err)
		}
		return n == 1, nil
	}
	ok, err := matched(s.coll(coll).UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set}))
	if err != nil {
		return false, fmt.Errorf("failed to update %s: %w", coll, err)
	}
	return ok, nil
}

// --- drives ---

func (s *Store) CreateDrive(ctx context.Context, d *types.Drive) (string, error) {
	skills := d.RequiredSkills
	if skills == nil {
		skills = []string{}
	}
	doc := driveDoc{
		ID:              primitive.NewObjectID(),
		CompanyName:     d.CompanyName,
		JobRole:         d.JobRole,
		MinGPA:          d.MinGPA,
		AllowedBacklogs: d.AllowedBacklogs,
		RequiredSkills:  skills,
		DriveDate:       d.DriveDate,
		RecruiterID:     d.RecruiterID,
		CreatedBy:       d.CreatedBy,
		CreatedAt:       s.stamp(d.CreatedAt),
	}
	if _, err := s.coll(drivesColl).InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("failed to create drive: %w", err)
	}
	return doc.ID.Hex(), nil
}

func (s *Store) GetDrive(ctx context.Context, id string) (*types.Drive, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var doc driveDoc
	if err := s.coll(drivesColl).FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get drive: %w", err)
	}
	d := doc.record()
	return &d, nil
}

func (s *Store) UpdateDrive(ctx context.Context, id string, u store.DriveUpdate) (bool, error) {
	oid, err := parseID(id)
	if err != nil {
		return false, err
	}
	set := bson.M{}
	if u.CompanyName != nil {
		set["company_name"] = *u.CompanyName
	}
	if u.JobRole != nil {
		set["role"] = *u.JobRole
	}
	if u.MinGPA != nil {
		set["min_gpa"] = *u.MinGPA
	}
	if u.AllowedBacklogs != nil {
		set["allowed_backlogs"] = *u.AllowedBacklogs
	}
	if u.RequiredSkills != nil {
		skills := *u.RequiredSkills
		if skills == nil {
			skills = []string{}
		}
		set["required_skills"] = skills
	}
	if u.DriveDate != nil {
		set["drive_date"] = *u.DriveDate
	}
	return s.updateByID(ctx, drivesColl, oid, set)
}

func (s *Store) DeleteDrive(ctx context.Context, id string) (bool, error) {
	oid, err := parseID(id)
	if err != nil {
		return false, err
	}
	res, err := s.coll(drivesColl).DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, fmt.Errorf("failed to delete drive: %w", err)
	}
	return res.DeletedCount == 1, nil
}

func (s *Store) SetDriveRecruiter(ctx context.Context, driveID, recruiterID string) (bool, error) {
	oid, err := parseID(driveID)
	if err != nil {
		return false, err
	}
	return s.updateByID(ctx, drivesColl, oid, bson.M{"recruiter_id": recruiterID})
}

// ListDrives lists drives newest first.
func (s *Store) ListDrives(ctx context.Context, f store.DriveFilter) ([]types.Drive, error) {
	filter := bson.M{}
	if f.Scoped {
		ids := scopeIDs(f.IDs)
		if len(ids) == 0 {
			return []types.Drive{}, nil
		}
		filter["_id"] = bson.M{"$in": ids}
	}
	if f.EligibleGPA != nil {
		filter["min_gpa"] = bson.M{"$lte": *f.EligibleGPA}
	}
	if f.EligibleBacklogs != nil {
		filter["allowed_backlogs"] = bson.M{"$gte": *f.EligibleBacklogs}
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})
	docs, err := findAll[driveDoc](ctx, s.coll(drivesColl), filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list drives: %w", err)
	}
	return records[driveDoc, types.Drive](docs), nil
}

func (s *Store) CountDrives(ctx context.Context) (int64, error) {
	n, err := s.coll(drivesColl).CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count drives: %w", err)
	}
	return n, nil
}

// --- applications ---

func (s *Store) InsertApplication(ctx context.Context, a *types.Application) (string, error) {
	doc := applicationDoc{
		ID:        primitive.NewObjectID(),
		StudentID: a.StudentID,
		CompanyID: a.CompanyID,
		Status:    string(a.Status),
		AppliedAt: s.stamp(a.AppliedAt),
		UpdatedAt: s.stamp(a.UpdatedAt),
	}
	if _, err := s.coll(applicationsColl).InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", fmt.Errorf("failed to insert application: %w", store.ErrDuplicate)
		}
		return "", fmt.Errorf("failed to insert application: %w", err)
	}
	return doc.ID.Hex(), nil
}

func (s *Store) GetApplication(ctx context.Context, id string) (*types.Application, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var doc applicationDoc
	if err := s.coll(applicationsColl).FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	a := doc.record()
	return &a, nil
}

func (s *Store) UpdateApplicationStatus(ctx context.Context, id string, from, to types.ApplicationStatus, at time.Time) (bool, error) {
	oid, err := parseID(id)
	if err != nil {
		return false, err
	}
	ok, err := matched(s.coll(applicationsColl).UpdateOne(ctx,
		bson.M{"_id": oid, "status": string(from)},
		bson.M{"$set": bson.M{"status": string(to), "updated_at": at.UTC()}},
	))
	if err != nil {
		return false, fmt.Errorf("failed to update application status: %w", err)
	}
	return ok, nil
}

// companyScope sets the company constraint; an explicit CompanyID and a scope
// combine with $and semantics.
func companyScope(filter bson.M, companyID string, ids []string, scoped bool) {
	switch {
	case scoped && companyID != "":
		filter["$and"] = bson.A{
			bson.M{"company_id": companyID},
			bson.M{"company_id": bson.M{"$in": ids}},
		}
	case scoped:
		filter["company_id"] = bson.M{"$in": ids}
	case companyID != "":
		filter["company_id"] = companyID
	}
}

func applicationFilter(f store.ApplicationFilter) bson.M {
	filter := bson.M{}
	if f.StudentID != "" {
		filter["student_id"] = f.StudentID
	}
	ids := f.CompanyIDs
	if ids == nil {
		ids = []string{}
	}
	companyScope(filter, f.CompanyID, ids, f.Scoped)
	if f.Status != "" {
		filter["status"] = string(f.Status)
	}
	return filter
}

// ListApplications lists applications newest first.
func (s *Store) ListApplications(ctx context.Context, f store.ApplicationFilter) ([]types.Application, error) {
	opts := options.Find().SetSort(bson.D{{Key: "applied_at", Value: -1}, {Key: "_id", Value: 1}})
	docs, err := findAll[applicationDoc](ctx, s.coll(applicationsColl), applicationFilter(f), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	return records[applicationDoc, types.Application](docs), nil
}

func (s *Store) CountApplications(ctx context.Context, f store.ApplicationFilter) (int64, error) {
	n, err := s.coll(applicationsColl).CountDocuments(ctx, applicationFilter(f))
	if err != nil {
		return 0, fmt.Errorf("failed to count applications: %w", err)
	}
	return n, nil
}

// --- interviews ---

func (s *Store) InsertInterview(ctx context.Context, iv *types.Interview) (string, error) {
	doc := interviewDoc{
		ID:        primitive.NewObjectID(),
		StudentID: iv.StudentID,
		CompanyID: iv.CompanyID,
		Date:      iv.Date,
		Time:      iv.Time,
		Mode:      string(iv.Mode),
		CreatedBy: iv.CreatedBy,
		CreatedAt: s.stamp(iv.CreatedAt),
	}
	if _, err := s.coll(interviewsColl).InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("failed to insert interview: %w", err)
	}
	return doc.ID.Hex(), nil
}

// ListInterviews lists interviews in calendar order.
func (s *Store) ListInterviews(ctx context.Context, f store.InterviewFilter) ([]types.Interview, error) {
	filter := bson.M{}
	if f.StudentID != "" {
		filter["student_id"] = f.StudentID
	}
	ids := f.CompanyIDs
	if ids == nil {
		ids = []string{}
	}
	companyScope(filter, f.CompanyID, ids, f.Scoped)

	opts := options.Find().SetSort(bson.D{
		{Key: "interview_date", Value: 1}, {Key: "interview_time", Value: 1}, {Key: "_id", Value: 1},
	})
	docs, err := findAll[interviewDoc](ctx, s.coll(interviewsColl), filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list interviews: %w", err)
	}
	return records[interviewDoc, types.Interview](docs), nil
}

// --- notifications ---

func (s *Store) InsertNotification(ctx context.Context, n *types.Notification) (string, error) {
	doc := notificationDoc{
		ID:        primitive.NewObjectID(),
		UserID:    n.UserID,
		Message:   n.Message,
		Type:      string(n.Type),
		Read:      n.Read,
		CreatedAt: s.stamp(n.CreatedAt),
	}
	if _, err := s.coll(notificationsColl).InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("failed to insert notification: %w", err)
	}
	return doc.ID.Hex(), nil
}

func (s *Store) ListNotifications(ctx context.Context, userID string, limit int) ([]types.Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	docs, err := findAll[notificationDoc](ctx, s.coll(notificationsColl), bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return records[notificationDoc, types.Notification](docs), nil
}

func (s *Store) CountUnread(ctx context.Context, userID string) (int64, error) {
	n, err := s.coll(notificationsColl).CountDocuments(ctx, bson.M{"user_id": userID, "read": false})
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return n, nil
}

// MarkNotificationRead only touches notifications owned by userID.
func (s *Store) MarkNotificationRead(ctx context.Context, id, userID string) (bool, error) {
	oid, err := parseID(id)
	if err != nil {
		return false, err
	}
	ok, err := matched(s.coll(notificationsColl).UpdateOne(ctx,
		bson.M{"_id": oid, "user_id": userID},
		bson.M{"$set": bson.M{"read": true}},
	))
	if err != nil {
		return false, fmt.Errorf("failed to mark notification read: %w", err)
	}
	return ok, nil
}
