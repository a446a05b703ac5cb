package user

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionName = "users"

type mongoProfile struct {
	FullName    string    `bson:"full_name"`
	Email       string    `bson:"email"`
	DateOfBirth time.Time `bson:"date_of_birth"`
	Address     string    `bson:"address"`
	City        string    `bson:"city"`
	State       string    `bson:"state"`
}

type mongoKYCDocument struct {
	DocType    string    `bson:"doc_type"`
	FileURL    string    `bson:"file_url"`
	UploadedAt time.Time `bson:"uploaded_at"`
}

type mongoUser struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	PhoneNumber    string             `bson:"phone_number"`
	Email          string             `bson:"email,omitempty"`
	ReferralCode   string             `bson:"referral_code,omitempty"`
	IsProfileSetup bool               `bson:"is_profile_setup"`
	IsKycDone      bool               `bson:"is_kyc_done"`
	IsAdmin        bool               `bson:"is_admin"`
	Profile        *mongoProfile      `bson:"profile,omitempty"`
	KYCDocuments   []mongoKYCDocument `bson:"kyc_documents,omitempty"`
	OTP            string             `bson:"otp,omitempty"`
	OTPExpiry      *time.Time         `bson:"otp_expiry,omitempty"`
	CreatedAt      time.Time          `bson:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at"`
}

func (m *mongoUser) toEntity() *User {
	u := &User{
		ID:             m.ID.Hex(),
		PhoneNumber:    m.PhoneNumber,
		Email:          m.Email,
		ReferralCode:   m.ReferralCode,
		IsProfileSetup: m.IsProfileSetup,
		IsKycDone:      m.IsKycDone,
		IsAdmin:        m.IsAdmin,
		OTP:            m.OTP,
		OTPExpiry:      m.OTPExpiry,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
	if m.Profile != nil {
		u.Profile = &Profile{
			FullName:    m.Profile.FullName,
			Email:       m.Profile.Email,
			DateOfBirth: m.Profile.DateOfBirth,
			Address:     m.Profile.Address,
			City:        m.Profile.City,
			State:       m.Profile.State,
		}
	}
	for _, d := range m.KYCDocuments {
		u.KYCDocuments = append(u.KYCDocuments, KYCDocument{DocType: d.DocType, FileURL: d.FileURL, UploadedAt: d.UploadedAt})
	}
	return u
}

// MongoRepository implements Repository on a MongoDB collection.
type MongoRepository struct {
	col *mongo.Collection
}

// NewMongoRepository builds the repository and ensures the unique indexes the
// identity invariants rely on.
func NewMongoRepository(ctx context.Context, db *mongo.Database) (*MongoRepository, error) {
	col := db.Collection(collectionName)
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "phone_number", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
	}
	if _, err := col.Indexes().CreateMany(ctx, indexes); err != nil {
		return nil, err
	}
	return &MongoRepository{col: col}, nil
}

func (r *MongoRepository) Create(ctx context.Context, u *User) error {
	now := time.Now().UTC()
	doc := mongoUser{
		ID:             primitive.NewObjectID(),
		PhoneNumber:    u.PhoneNumber,
		Email:          u.Email,
		ReferralCode:   u.ReferralCode,
		IsProfileSetup: u.IsProfileSetup,
		IsKycDone:      u.IsKycDone,
		IsAdmin:        u.IsAdmin,
		OTP:            u.OTP,
		OTPExpiry:      u.OTPExpiry,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if u.Profile != nil {
		doc.Profile = &mongoProfile{
			FullName:    u.Profile.FullName,
			Email:       u.Profile.Email,
			DateOfBirth: u.Profile.DateOfBirth,
			Address:     u.Profile.Address,
			City:        u.Profile.City,
			State:       u.Profile.State,
		}
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return err
	}
	u.ID = doc.ID.Hex()
	u.CreatedAt = now
	u.UpdatedAt = now
	return nil
}

func (r *MongoRepository) FindByID(ctx context.Context, id string) (*User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *MongoRepository) FindByPhone(ctx context.Context, phone string) (*User, error) {
	return r.findOne(ctx, bson.M{"phone_number": phone})
}

func (r *MongoRepository) FindByEmailOrPhone(ctx context.Context, identifier string) (*User, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"email": identifier},
		bson.M{"phone_number": identifier},
	}}
	return r.findOne(ctx, filter)
}

func (r *MongoRepository) FindAdminByEmail(ctx context.Context, email string) (*User, error) {
	return r.findOne(ctx, bson.M{"email": email, "is_admin": true})
}

func (r *MongoRepository) EmailInUse(ctx context.Context, email, excludeID string) (bool, error) {
	filter := bson.M{"email": email}
	if excludeID != "" {
		oid, err := primitive.ObjectIDFromHex(excludeID)
		if err != nil {
			return false, ErrNotFound
		}
		filter["_id"] = bson.M{"$ne": oid}
	}
	count, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *MongoRepository) SetOTP(ctx context.Context, id, code string, expiry time.Time) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	update := bson.M{"$set": bson.M{"otp": code, "otp_expiry": expiry, "updated_at": time.Now().UTC()}}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearOTP is a single conditional update keyed on the expected code, so two
// racing verifications (or a resend racing a verify) cannot both succeed.
func (r *MongoRepository) ClearOTP(ctx context.Context, id, expectedCode string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	filter := bson.M{"_id": oid, "otp": expectedCode}
	update := bson.M{
		"$unset": bson.M{"otp": "", "otp_expiry": ""},
		"$set":   bson.M{"updated_at": time.Now().UTC()},
	}
	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrOTPMismatch
	}
	return nil
}

func (r *MongoRepository) SaveProfile(ctx context.Context, id string, profile Profile, email string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	update := bson.M{"$set": bson.M{
		"profile": mongoProfile{
			FullName:    profile.FullName,
			Email:       profile.Email,
			DateOfBirth: profile.DateOfBirth,
			Address:     profile.Address,
			City:        profile.City,
			State:       profile.State,
		},
		"email":            email,
		"is_profile_setup": true,
		"updated_at":       time.Now().UTC(),
	}}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepository) AppendKYCDocument(ctx context.Context, id string, doc KYCDocument) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	update := bson.M{
		"$push": bson.M{"kyc_documents": mongoKYCDocument{DocType: doc.DocType, FileURL: doc.FileURL, UploadedAt: doc.UploadedAt}},
		"$set":  bson.M{"is_kyc_done": true, "updated_at": time.Now().UTC()},
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepository) findOne(ctx context.Context, filter bson.M) (*User, error) {
	var doc mongoUser
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc.toEntity(), nil
}
