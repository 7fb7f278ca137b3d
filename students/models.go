package students

import (
	"strconv"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"student-records/fieldmap"
)

// StudentModel is one student record. Empty strings mean "not provided".
type StudentModel struct {
	ID               uint              `gorm:"primaryKey" json:"id"`
	GroupID          *uint             `gorm:"index" json:"groupId"`
	ClassCode        string            `json:"classCode,omitempty"`
	SerialNumber     *int              `json:"serialNumber,omitempty"`
	Name             string            `gorm:"not null;index" json:"name"`
	ClassRoom        string            `json:"classRoom,omitempty"`
	StudentCode      string            `json:"studentCode,omitempty"`
	NationalID       string            `gorm:"uniqueIndex;not null" json:"nationalId"`
	BirthDate        string            `json:"birthDate,omitempty"`
	BirthDay         *int              `json:"birthDay,omitempty"`
	BirthMonth       *int              `json:"birthMonth,omitempty"`
	BirthYear        *int              `json:"birthYear,omitempty"`
	BirthGovernorate string            `json:"birthGovernorate,omitempty"`
	Gender           string            `json:"gender,omitempty"`
	Religion         string            `json:"religion,omitempty"`
	Nationality      string            `json:"nationality,omitempty"`
	LastCertificate  string            `json:"lastCertificate,omitempty"`
	LastSchool       string            `json:"lastSchool,omitempty"`
	TotalScore       string            `json:"totalScore,omitempty"`
	GuardianName     string            `json:"guardianName,omitempty"`
	StudentAddress   string            `gorm:"type:text" json:"studentAddress,omitempty"`
	Stage            string            `json:"stage,omitempty"`
	OrphanStatus     string            `json:"orphanStatus,omitempty"`
	EnrollmentStatus string            `json:"enrollmentStatus,omitempty"`
	TabletSerial     string            `json:"tabletSerial,omitempty"`
	IMEI             string            `gorm:"column:imei" json:"imei,omitempty"`
	InsuranceNumber  string            `json:"insuranceNumber,omitempty"`
	EnrollmentDate   string            `json:"enrollmentDate,omitempty"`
	Notes            string            `gorm:"type:text" json:"notes,omitempty"`
	Extra            datatypes.JSONMap `json:"extra,omitempty"` // unclassified import columns
	CreatedAt        time.Time         `json:"createdAt"`
}

// GroupModel is a named batch of imported students
type GroupModel struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"not null" json:"name"`
	CreatedAt    time.Time `gorm:"not null" json:"createdAt"`
	StudentCount int64     `gorm:"-" json:"studentCount"`
}

// TransferRequestModel asks to move a student to another school
type TransferRequestModel struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	StudentID      uint   `gorm:"not null;index" json:"studentId"`
	FromSchool     string `gorm:"not null" json:"fromSchool"`
	ToSchool       string `gorm:"not null" json:"toSchool"`
	TransferReason string `gorm:"type:text" json:"transferReason,omitempty"`
	RequestDate    string `gorm:"not null" json:"requestDate"`
	Status         string `gorm:"not null;default:'pending'" json:"status"`
}

// TransferStatusPending is the status of a new transfer request
const TransferStatusPending = "pending"

func (StudentModel) TableName() string {
	return "students"
}

func (GroupModel) TableName() string {
	return "student_groups"
}

func (TransferRequestModel) TableName() string {
	return "transfer_requests"
}

// AutoMigrate creates the students, groups and transfer request tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&GroupModel{}, &StudentModel{}, &TransferRequestModel{})
}

// ApplyFields copies classified import values onto s.
// Integer fields that do not parse are left unset.
func (s *StudentModel) ApplyFields(fields fieldmap.Fields) {
	for field, value := range fields {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		switch field {
		case fieldmap.Name:
			s.Name = value
		case fieldmap.NationalID:
			s.NationalID = value
		case fieldmap.ClassRoom:
			s.ClassRoom = value
		case fieldmap.StudentCode:
			s.StudentCode = value
		case fieldmap.ClassCode:
			s.ClassCode = value
		case fieldmap.SerialNumber:
			s.SerialNumber = parseInt(value)
		case fieldmap.BirthDate:
			s.BirthDate = value
		case fieldmap.BirthDay:
			s.BirthDay = parseInt(value)
		case fieldmap.BirthMonth:
			s.BirthMonth = parseInt(value)
		case fieldmap.BirthYear:
			s.BirthYear = parseInt(value)
		case fieldmap.BirthGovernorate:
			s.BirthGovernorate = value
		case fieldmap.Gender:
			s.Gender = value
		case fieldmap.Religion:
			s.Religion = value
		case fieldmap.Nationality:
			s.Nationality = value
		case fieldmap.LastCertificate:
			s.LastCertificate = value
		case fieldmap.LastSchool:
			s.LastSchool = value
		case fieldmap.TotalScore:
			s.TotalScore = value
		case fieldmap.GuardianName:
			s.GuardianName = value
		case fieldmap.StudentAddress:
			s.StudentAddress = value
		case fieldmap.Stage:
			s.Stage = value
		case fieldmap.OrphanStatus:
			s.OrphanStatus = value
		case fieldmap.EnrollmentStatus:
			s.EnrollmentStatus = value
		case fieldmap.TabletSerial:
			s.TabletSerial = value
		case fieldmap.IMEI:
			s.IMEI = value
		case fieldmap.InsuranceNumber:
			s.InsuranceNumber = value
		case fieldmap.EnrollmentDate:
			s.EnrollmentDate = value
		case fieldmap.Notes:
			s.Notes = value
		}
	}
}

func parseInt(s string) *int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &n
}
