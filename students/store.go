package students

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"student-records/common"
)

// ErrNotFound is returned when a student or group does not exist
var ErrNotFound = errors.New("not found")

// Search types accepted by SearchStudents
const (
	SearchByNationalID = "nationalId"
	SearchByName       = "name"
)

// Store is the gorm-backed record store
type Store struct {
	db *gorm.DB
}

// NewStore wraps an open database handle
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// ListStudents returns every student ordered by name
func (s *Store) ListStudents(ctx context.Context) ([]StudentModel, error) {
	var students []StudentModel
	err := s.db.WithContext(ctx).Order("name").Find(&students).Error
	return students, err
}

// GetStudent loads a student by id
func (s *Store) GetStudent(ctx context.Context, id uint) (*StudentModel, error) {
	var student StudentModel
	if err := s.db.WithContext(ctx).First(&student, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &student, nil
}

// GetStudentByNationalID loads a student by national id
func (s *Store) GetStudentByNationalID(ctx context.Context, nationalID string) (*StudentModel, error) {
	var student StudentModel
	err := s.db.WithContext(ctx).Where("national_id = ?", nationalID).First(&student).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &student, nil
}

// SearchStudents does a case-insensitive substring match on the national id
// (default) or the name. An empty query returns every student.
func (s *Store) SearchStudents(ctx context.Context, query, searchType string) ([]StudentModel, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.ListStudents(ctx)
	}

	column := "national_id"
	if searchType == SearchByName {
		column = "name"
	}

	var students []StudentModel
	err := s.db.WithContext(ctx).
		Where(fmt.Sprintf(`LOWER(%s) LIKE ? ESCAPE '\'`, column), "%"+escapeLike(strings.ToLower(query))+"%").
		Order("name").
		Find(&students).Error
	return students, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// escapeLike makes s match literally inside a LIKE pattern
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// CreateStudent inserts one student
func (s *Store) CreateStudent(ctx context.Context, student *StudentModel) error {
	return s.db.WithContext(ctx).Create(student).Error
}

// UpdateStudent applies column updates and returns the stored record
func (s *Store) UpdateStudent(ctx context.Context, id uint, updates map[string]interface{}) (*StudentModel, error) {
	student, err := s.GetStudent(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return student, nil
	}
	if err := s.db.WithContext(ctx).Model(student).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.GetStudent(ctx, id)
}

// DeleteStudent removes a student and its transfer requests
func (s *Store) DeleteStudent(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("student_id = ?", id).Delete(&TransferRequestModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&StudentModel{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// BulkCreateStudents inserts students one at a time. A record with neither
// name nor national id is skipped; a record the database rejects is
// logged and reported as failed. The rest of the batch always continues.
// Result row numbers are 1-based positions in records.
func (s *Store) BulkCreateStudents(ctx context.Context, records []StudentModel) ([]StudentModel, []common.RecordValidationResult) {
	var (
		created []StudentModel
		results []common.RecordValidationResult
	)

	db := s.db.WithContext(ctx)
	for i := range records {
		record := records[i]
		result := common.RecordValidationResult{
			RowNumber: i + 1,
			RecordID:  record.NationalID,
			Valid:     true,
		}

		if strings.TrimSpace(record.Name) == "" && strings.TrimSpace(record.NationalID) == "" {
			result.Outcome = common.OutcomeSkipped
			result.AddError("name", "Row has neither a name nor a national id")
			results = append(results, result)
			continue
		}

		if v := ValidateStudent(&record, i+1); !v.Valid {
			log.Printf("Rejected student at row %d (national id %q): %s", i+1, record.NationalID, v.Errors[0].Message)
			v.Outcome = common.OutcomeFailed
			results = append(results, *v)
			continue
		}

		if err := db.Create(&record).Error; err != nil {
			log.Printf("Error inserting student at row %d (national id %q): %v", i+1, record.NationalID, err)
			result.Outcome = common.OutcomeFailed
			result.AddError("national_id", err.Error())
			results = append(results, result)
			continue
		}

		result.Outcome = common.OutcomeCreated
		results = append(results, result)
		created = append(created, record)
	}

	return created, results
}

// ListGroups returns all groups with their student counts
func (s *Store) ListGroups(ctx context.Context) ([]GroupModel, error) {
	db := s.db.WithContext(ctx)

	var groups []GroupModel
	if err := db.Order("created_at DESC").Find(&groups).Error; err != nil {
		return nil, err
	}

	var counts []struct {
		GroupID uint
		Count   int64
	}
	if err := db.Model(&StudentModel{}).
		Select("group_id, COUNT(*) AS count").
		Where("group_id IS NOT NULL").
		Group("group_id").
		Scan(&counts).Error; err != nil {
		return nil, err
	}

	byGroup := make(map[uint]int64, len(counts))
	for _, c := range counts {
		byGroup[c.GroupID] = c.Count
	}
	for i := range groups {
		groups[i].StudentCount = byGroup[groups[i].ID]
	}
	return groups, nil
}

// GetGroup loads a group by id
func (s *Store) GetGroup(ctx context.Context, id uint) (*GroupModel, error) {
	var group GroupModel
	if err := s.db.WithContext(ctx).First(&group, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &group, nil
}

// CreateGroup inserts a new group
func (s *Store) CreateGroup(ctx context.Context, name string, createdAt time.Time) (*GroupModel, error) {
	group := GroupModel{Name: strings.TrimSpace(name), CreatedAt: createdAt}
	if group.Name == "" {
		return nil, fmt.Errorf("%w: group name is required", common.ErrContent)
	}
	if err := s.db.WithContext(ctx).Create(&group).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

// DeleteGroup removes the transfer requests of the group's students, then
// the students, then the group, in one transaction.
func (s *Store) DeleteGroup(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var group GroupModel
		if err := tx.First(&group, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		studentIDs := tx.Model(&StudentModel{}).Select("id").Where("group_id = ?", id)
		if err := tx.Where("student_id IN (?)", studentIDs).Delete(&TransferRequestModel{}).Error; err != nil {
			return fmt.Errorf("delete transfer requests: %w", err)
		}
		if err := tx.Where("group_id = ?", id).Delete(&StudentModel{}).Error; err != nil {
			return fmt.Errorf("delete students: %w", err)
		}
		if err := tx.Delete(&group).Error; err != nil {
			return fmt.Errorf("delete group: %w", err)
		}
		return nil
	})
	if err != nil && !errors.Is(err, ErrNotFound) {
		log.Printf("Error deleting group %d: %v", id, err)
	}
	return err
}

// CreateTransferRequest stores a transfer request for an existing student
func (s *Store) CreateTransferRequest(ctx context.Context, req *TransferRequestModel) error {
	if _, err := s.GetStudent(ctx, req.StudentID); err != nil {
		return err
	}
	if strings.TrimSpace(req.Status) == "" {
		req.Status = TransferStatusPending
	}
	return s.db.WithContext(ctx).Create(req).Error
}

// ListTransferRequests returns a student's transfer requests
func (s *Store) ListTransferRequests(ctx context.Context, studentID uint) ([]TransferRequestModel, error) {
	var requests []TransferRequestModel
	err := s.db.WithContext(ctx).Where("student_id = ?", studentID).Order("id").Find(&requests).Error
	return requests, err
}
