package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"preparedness-service/internal/models"
	"preparedness-service/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type UserService struct {
	Users *repository.UserRepository
	Log   *zap.Logger
}

func NewUserService(users *repository.UserRepository, log *zap.Logger) *UserService {
	return &UserService{Users: users, Log: log}
}

type CreateStudentInput struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	RollNumber string `json:"rollNumber"`
	Grade      string `json:"grade"`
	Password   string `json:"password"`
}

// CreateStudent registers a student under the calling institute admin.
func (s *UserService) CreateStudent(ctx context.Context, in CreateStudentInput, instituteAdminID string) (*models.User, error) {
	if in.Name == "" || in.Email == "" || in.RollNumber == "" || in.Grade == "" {
		return nil, fmt.Errorf("%w: name, email, rollNumber and grade are required", ErrInvalidInput)
	}
	if !emailPattern.MatchString(in.Email) {
		return nil, fmt.Errorf("%w: invalid email format", ErrInvalidInput)
	}

	admin, err := s.Users.FindByID(ctx, instituteAdminID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if existing, err := s.Users.FindByEmail(ctx, in.Email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, fmt.Errorf("%w: user with this email already exists", ErrDuplicate)
	}
	if existing, err := s.Users.FindStudentByRoll(ctx, in.RollNumber, instituteAdminID, ""); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, fmt.Errorf("%w: student with this roll number already exists in your institute", ErrDuplicate)
	}

	student := &models.User{
		Name:       in.Name,
		Email:      in.Email,
		Role:       models.RoleStudent,
		RollNumber: in.RollNumber,
		Grade:      in.Grade,
		Institute:  instituteAdminID,
		CreatedBy:  instituteAdminID,
		CreatedAt:  time.Now(),
	}
	if in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		student.Password = string(hash)
	}

	if err := s.Users.Create(ctx, student); err != nil {
		return nil, err
	}
	s.Log.Info("student created",
		zap.String("studentId", student.ID),
		zap.String("institute", admin.ID))
	student.Password = ""
	return student, nil
}

type CreateInstituteAdminInput struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	InstituteName string `json:"instituteName"`
	Address       string `json:"address"`
	ContactNumber string `json:"contactNumber"`
}

func (s *UserService) CreateInstituteAdmin(ctx context.Context, in CreateInstituteAdminInput, createdBy string) (*models.User, error) {
	if in.Name == "" || in.Email == "" || in.InstituteName == "" {
		return nil, fmt.Errorf("%w: name, email and instituteName are required", ErrInvalidInput)
	}

	admin := &models.User{
		Name:          in.Name,
		Email:         in.Email,
		Role:          models.RoleInstituteAdmin,
		InstituteName: in.InstituteName,
		Address:       in.Address,
		ContactNumber: in.ContactNumber,
		CreatedBy:     createdBy,
		CreatedAt:     time.Now(),
	}
	if err := s.Users.Create(ctx, admin); err != nil {
		return nil, err
	}
	s.Log.Info("institute admin created", zap.String("userId", admin.ID))
	return admin, nil
}

type StudentListQuery struct {
	Page   int
	Limit  int
	Search string
	Grade  string
}

type StudentPage struct {
	Students   []models.User `json:"students"`
	Pagination Pagination    `json:"pagination"`
}

// ListStudents returns one page of the institute admin's students.
func (s *UserService) ListStudents(ctx context.Context, instituteAdminID string, q StudentListQuery) (*StudentPage, error) {
	filter := bson.M{"institute": instituteAdminID, "role": models.RoleStudent}
	if q.Grade != "" {
		filter["grade"] = q.Grade
	}
	if q.Search != "" {
		filter["$or"] = []bson.M{
			{"name": bson.M{"$regex": q.Search, "$options": "i"}},
			{"email": bson.M{"$regex": q.Search, "$options": "i"}},
			{"rollNumber": bson.M{"$regex": q.Search, "$options": "i"}},
		}
	}

	students, total, err := s.Users.FindPage(ctx, filter, q.Page, q.Limit)
	if err != nil {
		return nil, err
	}
	return &StudentPage{Students: students, Pagination: NewPagination(q.Page, q.Limit, total)}, nil
}

// UpdateStudent applies updates to a student owned by the institute admin.
func (s *UserService) UpdateStudent(ctx context.Context, studentID, instituteAdminID string, updates map[string]interface{}) (*models.User, error) {
	if len(updates) == 0 {
		return nil, fmt.Errorf("%w: no updates provided", ErrInvalidInput)
	}

	student, err := s.Users.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if student.Institute != instituteAdminID {
		return nil, fmt.Errorf("%w: student does not belong to your institute", ErrForbidden)
	}

	// Fields the institute admin can never rewrite.
	delete(updates, "institute")
	delete(updates, "createdBy")
	delete(updates, "_id")
	delete(updates, "id")
	delete(updates, "role")

	if pw, ok := updates["password"].(string); ok && pw != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		updates["password"] = string(hash)
	}

	if roll, ok := updates["rollNumber"].(string); ok && roll != student.RollNumber {
		if existing, err := s.Users.FindStudentByRoll(ctx, roll, instituteAdminID, studentID); err != nil {
			return nil, err
		} else if existing != nil {
			return nil, fmt.Errorf("%w: student with this roll number already exists in your institute", ErrDuplicate)
		}
	}
	if email, ok := updates["email"].(string); ok && email != student.Email {
		if existing, err := s.Users.FindByEmail(ctx, email); err != nil {
			return nil, err
		} else if existing != nil && existing.ID != studentID {
			return nil, fmt.Errorf("%w: user with this email already exists", ErrDuplicate)
		}
	}

	updated, err := s.Users.Update(ctx, studentID, bson.M(updates))
	if err != nil {
		return nil, err
	}
	s.Log.Info("student updated", zap.String("studentId", studentID))
	updated.Password = ""
	return updated, nil
}

func (s *UserService) DeleteStudent(ctx context.Context, studentID, instituteAdminID string) error {
	student, err := s.Users.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		return err
	}
	if student.Institute != instituteAdminID {
		return fmt.Errorf("%w: student does not belong to your institute", ErrForbidden)
	}
	if err := s.Users.Delete(ctx, studentID); err != nil {
		return err
	}
	s.Log.Info("student deleted", zap.String("studentId", studentID))
	return nil
}

type BulkStudentRow struct {
	Index           int          `json:"index"`
	Student         *models.User `json:"student,omitempty"`
	DefaultPassword string       `json:"defaultPassword,omitempty"`
	Error           string       `json:"error,omitempty"`
}

type BulkStudentResult struct {
	Successful []BulkStudentRow `json:"successful"`
	Failed     []BulkStudentRow `json:"failed"`
	Total      int              `json:"total"`
}

const bulkStudentLimit = 100

// CreateBulkStudents registers up to 100 students in one call, reporting
// per-row success or failure. Rows without a password get a generated
// default one, returned once in the response.
func (s *UserService) CreateBulkStudents(ctx context.Context, rows []CreateStudentInput, instituteAdminID string) (*BulkStudentResult, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: students array is required and must not be empty", ErrInvalidInput)
	}
	if len(rows) > bulkStudentLimit {
		return nil, fmt.Errorf("%w: cannot create more than %d students at once", ErrInvalidInput, bulkStudentLimit)
	}

	admin, err := s.Users.FindByID(ctx, instituteAdminID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	result := &BulkStudentResult{Total: len(rows)}
	for i, row := range rows {
		password := row.Password
		generated := ""
		if password == "" {
			generated = defaultStudentPassword(row.RollNumber, admin.InstituteName)
			password = generated
		}
		row.Password = password

		student, err := s.CreateStudent(ctx, row, instituteAdminID)
		if err != nil {
			result.Failed = append(result.Failed, BulkStudentRow{Index: i, Error: err.Error()})
			continue
		}
		result.Successful = append(result.Successful, BulkStudentRow{
			Index:           i,
			Student:         student,
			DefaultPassword: generated,
		})
	}

	s.Log.Info("bulk student creation completed",
		zap.Int("successful", len(result.Successful)),
		zap.Int("failed", len(result.Failed)))
	return result, nil
}

func defaultStudentPassword(rollNumber, instituteName string) string {
	name := strings.ToLower(strings.ReplaceAll(instituteName, " ", ""))
	if name == "" {
		name = "institute"
	}
	return fmt.Sprintf("%s@%s", rollNumber, name)
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.Users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	user.Password = ""
	return user, nil
}

// UpdateUser is the generic admin-facing update.
func (s *UserService) UpdateUser(ctx context.Context, id string, updates map[string]interface{}) (*models.User, error) {
	if len(updates) == 0 {
		return nil, fmt.Errorf("%w: no updates provided", ErrInvalidInput)
	}
	delete(updates, "_id")
	delete(updates, "id")

	user, err := s.Users.Update(ctx, id, bson.M(updates))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	user.Password = ""
	return user, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	if err := s.Users.Delete(ctx, id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
