package fieldmap

import "strings"

// Field names a canonical student attribute
type Field string

const (
	Name             Field = "name"
	NationalID       Field = "nationalId"
	ClassRoom        Field = "classRoom"
	StudentCode      Field = "studentCode"
	ClassCode        Field = "classCode"
	SerialNumber     Field = "serialNumber"
	BirthDate        Field = "birthDate"
	BirthDay         Field = "birthDay"
	BirthMonth       Field = "birthMonth"
	BirthYear        Field = "birthYear"
	BirthGovernorate Field = "birthGovernorate"
	Gender           Field = "gender"
	Religion         Field = "religion"
	Nationality      Field = "nationality"
	LastCertificate  Field = "lastCertificate"
	LastSchool       Field = "lastSchool"
	TotalScore       Field = "totalScore"
	GuardianName     Field = "guardianName"
	StudentAddress   Field = "studentAddress"
	Stage            Field = "stage"
	OrphanStatus     Field = "orphanStatus"
	EnrollmentStatus Field = "enrollmentStatus"
	TabletSerial     Field = "tabletSerial"
	IMEI             Field = "imei"
	InsuranceNumber  Field = "insuranceNumber"
	EnrollmentDate   Field = "enrollmentDate"
	Notes            Field = "notes"
)

// Rule maps a normalized header to a field when Match returns true
type Rule struct {
	Field Field
	Match func(key string) bool
}

func has(key string, tokens ...string) bool {
	for _, t := range tokens {
		if !strings.Contains(key, t) {
			return false
		}
	}
	return true
}

// rules is evaluated top to bottom and the first match wins. The patterns
// overlap (a "class code" header also contains "class"), so moving an entry
// changes which field ambiguous headers land in.
var rules = []Rule{
	{Name, func(k string) bool { return has(k, "الاس") || k == "اسم" || has(k, "name") }},
	{NationalID, func(k string) bool { return has(k, "قومي") || has(k, "national") }},
	{ClassCode, func(k string) bool { return has(k, "كود", "فصل") }},
	{ClassRoom, func(k string) bool { return has(k, "فصل") && !has(k, "كود") }},
	{StudentCode, func(k string) bool { return has(k, "كود", "طالب") }},
	{BirthDate, func(k string) bool { return has(k, "تاريخ", "ميلاد") }},
	{GuardianName, func(k string) bool { return has(k, "ولي", "امر") }},
	{StudentAddress, func(k string) bool { return has(k, "عنوان") && !has(k, "محافظة") }},
	{BirthGovernorate, func(k string) bool { return has(k, "محافظة", "ميلاد") }},
	{Stage, func(k string) bool { return has(k, "مرحل") }},
	{EnrollmentStatus, func(k string) bool { return has(k, "قيد") || has(k, "حالة") }},
	{OrphanStatus, func(k string) bool { return has(k, "ايتام") }},
	{TabletSerial, func(k string) bool { return has(k, "رقم", "مسلسل", "تابلت") || has(k, "tablet") }},
	{IMEI, func(k string) bool { return k == "imei" }},
	{InsuranceNumber, func(k string) bool { return has(k, "بوليصة") || has(k, "تامين") }},
	{Gender, func(k string) bool { return has(k, "نوع") }},
	{Religion, func(k string) bool { return has(k, "ديان") }},
	{Nationality, func(k string) bool { return has(k, "جنسي") }},
	{LastCertificate, func(k string) bool { return has(k, "اخر", "شهاد") }},
	{LastSchool, func(k string) bool { return has(k, "اخر", "مدرس") }},
	{TotalScore, func(k string) bool { return has(k, "مجموع") || has(k, "total") }},
}

// Rules returns the classification rules in priority order
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// Classify returns the field a column holds, given its normalized header
// and a cell value. Blank values are never classified.
func Classify(key, value string) (Field, bool) {
	if strings.TrimSpace(value) == "" {
		return "", false
	}
	return ClassifyHeader(key)
}

// ClassifyHeader applies the rules to a normalized header alone
func ClassifyHeader(key string) (Field, bool) {
	for _, r := range rules {
		if r.Match(key) {
			return r.Field, true
		}
	}
	return "", false
}
