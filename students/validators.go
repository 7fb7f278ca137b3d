package students

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"student-records/common"
)

// ValidateStudent checks the rules every stored student must satisfy
func ValidateStudent(s *StudentModel, rowNum int) *common.RecordValidationResult {
	result := &common.RecordValidationResult{
		RowNumber: rowNum,
		RecordID:  s.NationalID,
		Valid:     true,
	}

	if err := common.ValidateRequired("name", s.Name); err != nil {
		result.AddError(err.Field, err.Message)
	}
	if err := common.ValidateRequired("national_id", s.NationalID); err != nil {
		result.AddError(err.Field, err.Message)
	}
	if err := common.ValidateRange("birth_day", s.BirthDay, 1, 31); err != nil {
		result.AddError(err.Field, err.Message)
	}
	if err := common.ValidateRange("birth_month", s.BirthMonth, 1, 12); err != nil {
		result.AddError(err.Field, err.Message)
	}
	if err := common.ValidateRange("birth_year", s.BirthYear, 1900, 2100); err != nil {
		result.AddError(err.Field, err.Message)
	}

	return result
}

// updatableColumns maps API field names to column names
var updatableColumns = map[string]string{
	"groupId":          "group_id",
	"classCode":        "class_code",
	"serialNumber":     "serial_number",
	"name":             "name",
	"classRoom":        "class_room",
	"studentCode":      "student_code",
	"nationalId":       "national_id",
	"birthDate":        "birth_date",
	"birthDay":         "birth_day",
	"birthMonth":       "birth_month",
	"birthYear":        "birth_year",
	"birthGovernorate": "birth_governorate",
	"gender":           "gender",
	"religion":         "religion",
	"nationality":      "nationality",
	"lastCertificate":  "last_certificate",
	"lastSchool":       "last_school",
	"totalScore":       "total_score",
	"guardianName":     "guardian_name",
	"studentAddress":   "student_address",
	"stage":            "stage",
	"orphanStatus":     "orphan_status",
	"enrollmentStatus": "enrollment_status",
	"tabletSerial":     "tablet_serial",
	"imei":             "imei",
	"insuranceNumber":  "insurance_number",
	"enrollmentDate":   "enrollment_date",
	"notes":            "notes",
}

var integerFields = map[string][2]int{
	"groupId":      {1, math.MaxInt32},
	"serialNumber": {0, math.MaxInt32},
	"birthDay":     {1, 31},
	"birthMonth":   {1, 12},
	"birthYear":    {1900, 2100},
}

// NormalizeStudentUpdate validates a partial update from the API and
// converts it to column updates. Name and national id cannot be cleared.
func NormalizeStudentUpdate(payload map[string]interface{}) (map[string]interface{}, *common.RecordValidationResult) {
	result := &common.RecordValidationResult{Valid: true}
	updates := make(map[string]interface{}, len(payload))

	for key, raw := range payload {
		column, ok := updatableColumns[key]
		if !ok {
			if key != "id" {
				result.AddError(key, fmt.Sprintf("%s is not an updatable field", key))
			}
			continue
		}

		if bounds, isInt := integerFields[key]; isInt {
			n, valid := toInt(raw)
			if !valid {
				result.AddError(key, fmt.Sprintf("%s must be an integer", key))
				continue
			}
			if n == nil {
				updates[column] = nil
				continue
			}
			if err := common.ValidateRange(key, n, bounds[0], bounds[1]); err != nil {
				result.AddError(err.Field, err.Message)
				continue
			}
			updates[column] = *n
			continue
		}

		value := ""
		if raw != nil {
			value = strings.TrimSpace(fmt.Sprint(raw))
		}
		if key == "name" || key == "nationalId" {
			if err := common.ValidateRequired(key, value); err != nil {
				result.AddError(err.Field, err.Message)
				continue
			}
		}
		updates[column] = value
	}

	return updates, result
}

// toInt accepts JSON numbers, numeric strings and null
func toInt(raw interface{}) (*int, bool) {
	switch v := raw.(type) {
	case nil:
		return nil, true
	case float64:
		if v != float64(int(v)) {
			return nil, false
		}
		n := int(v)
		return &n, true
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, true
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil, false
		}
		return &n, true
	}
	return nil, false
}

// ValidateTransferRequest checks a transfer request before it is stored
func ValidateTransferRequest(req *TransferRequestModel) *common.RecordValidationResult {
	result := &common.RecordValidationResult{Valid: true}

	if req.StudentID == 0 {
		result.AddError("student_id", "student_id is required")
	}
	if err := common.ValidateRequired("from_school", req.FromSchool); err != nil {
		result.AddError(err.Field, err.Message)
	}
	if err := common.ValidateRequired("to_school", req.ToSchool); err != nil {
		result.AddError(err.Field, err.Message)
	}
	if err := common.ValidateRequired("request_date", req.RequestDate); err != nil {
		result.AddError(err.Field, err.Message)
	}
	if req.Status != "" {
		if err := common.ValidateEnum("status", req.Status, []string{"pending", "approved", "rejected"}); err != nil {
			result.AddError(err.Field, err.Message)
		}
	}

	return result
}
