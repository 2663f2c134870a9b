// Package validation holds the pure field validators shared by every mutating
// profile and posting route. The mobile client runs the same checks before
// submission; the server treats them as authoritative.
package validation

import (
	"errors"
	"regexp"
	"strings"
)

var (
	emailRegex     = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	isoDateRegex   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	yearMonthRegex = regexp.MustCompile(`^\d{4}-\d{2}$`)
	birthDateRegex = regexp.MustCompile(`^\d{8}$`)
	phoneRegex     = regexp.MustCompile(`^\d{2,3}-\d{3,4}-\d{4}$`)
	bareDigitsRe   = regexp.MustCompile(`^(\d{3})(\d{3,4})(\d{4})$`)
	wageRegex      = regexp.MustCompile(`^\d+$`)
)

// ActivityTypes 是经历/活动条目允许的 8 种类别。
var ActivityTypes = []string{
	"교내활동", "인턴", "자원봉사", "동아리", "아르바이트", "사회활동", "수행과제", "해외연수",
}

// UniversityTypes 与 GraduationStatuses 对应学历档案的下拉选项。
var (
	UniversityTypes    = []string{"대학(2,3년)", "대학교(4년)", "대학원(석사)", "대학원(박사)"}
	GraduationStatuses = []string{"졸업", "재학중", "휴학중", "수료", "중퇴", "자퇴", "졸업예정"}
)

func contains(options []string, value string) bool {
	for _, o := range options {
		if o == value {
			return true
		}
	}
	return false
}

// IsISODate reports whether value looks like YYYY-MM-DD.
func IsISODate(value string) bool { return isoDateRegex.MatchString(value) }

// IsYearMonth reports whether value looks like YYYY-MM.
func IsYearMonth(value string) bool { return yearMonthRegex.MatchString(value) }

// IsEmail reports whether value has the shape of an email address.
func IsEmail(value string) bool { return emailRegex.MatchString(value) }

// NormalizePhone 把裸数字号码补成 3-4-4 连字符形式；已经带连字符则原样返回。
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phoneRegex.MatchString(phone) {
		return phone
	}
	if m := bareDigitsRe.FindStringSubmatch(phone); m != nil {
		return m[1] + "-" + m[2] + "-" + m[3]
	}
	return phone
}

// JobSeekerSignup validates the sign-up fields for a job seeker account.
func JobSeekerSignup(studentID, email, password string) error {
	if studentID == "" || email == "" || password == "" {
		return errors.New("모든 필드를 입력해주세요.")
	}
	if !emailRegex.MatchString(email) {
		return errors.New("올바른 이메일 형식이 아닙니다.")
	}
	if len(studentID) > 15 || len(email) > 30 || len(password) > 20 {
		return errors.New("입력 길이가 제한을 초과했습니다.")
	}
	return nil
}

// EmployerSignup validates the sign-up fields for an employer account.
func EmployerSignup(id, departmentName, password string) error {
	if id == "" || departmentName == "" || password == "" {
		return errors.New("모든 필드를 입력해주세요.")
	}
	if len(id) > 7 || len([]rune(departmentName)) > 15 || len(password) > 15 {
		return errors.New("입력 길이가 제한을 초과했습니다.")
	}
	return nil
}

// PostJobFields validates a posting create/update payload.
func PostJobFields(title, contents, companyName, location, qualificationType,
	workPeriodStart, workPeriodEnd, recruitmentDeadline, hourlyWage,
	applicationMethod, contactNumber string) error {
	fields := []string{title, contents, companyName, location, qualificationType,
		workPeriodStart, workPeriodEnd, recruitmentDeadline, hourlyWage,
		applicationMethod, contactNumber}
	for _, f := range fields {
		if strings.TrimSpace(f) == "" {
			return errors.New("모든 항목을 입력하세요")
		}
	}
	if !wageRegex.MatchString(hourlyWage) {
		return errors.New("시급은 숫자만 입력할 수 있습니다.")
	}
	if !isoDateRegex.MatchString(workPeriodStart) || !isoDateRegex.MatchString(workPeriodEnd) || !isoDateRegex.MatchString(recruitmentDeadline) {
		return errors.New("날짜는 YYYY-MM-DD 형식으로 입력해주세요.")
	}
	if !phoneRegex.MatchString(contactNumber) {
		return errors.New("전화번호 형식이 다릅니다.")
	}
	if len([]rune(contents)) > 500 {
		return errors.New("상세 내용은 500자를 초과할 수 없습니다.")
	}
	return nil
}

// BasicInfo validates the single-row basic profile payload.
// The phone number may arrive as bare digits; callers normalize it afterwards.
func BasicInfo(name, birthDate, email, phone string) error {
	if name == "" || birthDate == "" || email == "" || phone == "" {
		return errors.New("이름, 생년월일, 이메일, 휴대폰 번호는 필수 입력 항목입니다.")
	}
	if len([]rune(name)) > 5 {
		return errors.New("이름은 5자를 초과할 수 없습니다.")
	}
	if !birthDateRegex.MatchString(birthDate) && !isoDateRegex.MatchString(birthDate) {
		return errors.New("생년월일은 YYYYMMDD 형식으로 입력해주세요.")
	}
	if !emailRegex.MatchString(email) {
		return errors.New("올바른 이메일 형식이 아닙니다.")
	}
	normalized := NormalizePhone(phone)
	if !phoneRegex.MatchString(normalized) {
		return errors.New("올바른 휴대폰 번호 형식이 아닙니다. (예: 010-1234-5678)")
	}
	return nil
}

// Education validates the single-row education payload.
// Admission/graduation dates use the YYYY-MM shape on the wire.
func Education(universityType, schoolName, admissionDate, graduationDate, graduationStatus, major string) error {
	if universityType == "" || schoolName == "" || admissionDate == "" || graduationDate == "" || graduationStatus == "" || major == "" {
		return errors.New("모든 필수 항목을 입력해주세요.")
	}
	if !contains(UniversityTypes, universityType) {
		return errors.New("올바른 대학 유형을 선택해주세요.")
	}
	if len([]rune(schoolName)) > 30 {
		return errors.New("학교명은 30자를 초과할 수 없습니다.")
	}
	if !yearMonthRegex.MatchString(admissionDate) || !yearMonthRegex.MatchString(graduationDate) {
		return errors.New("재학기간은 YYYY-MM 형식으로 입력해주세요.")
	}
	if !contains(GraduationStatuses, graduationStatus) {
		return errors.New("올바른 졸업여부를 선택해주세요.")
	}
	if len([]rune(major)) > 15 {
		return errors.New("전공은 15자를 초과할 수 없습니다.")
	}
	return nil
}

// ExperienceActivity validates a single experience/activity entry.
func ExperienceActivity(activityType, organization, startDate, endDate, description string) error {
	if activityType == "" || organization == "" || startDate == "" || endDate == "" || description == "" {
		return errors.New("모든 필드를 입력해주세요.")
	}
	if !contains(ActivityTypes, activityType) {
		return errors.New("올바른 활동구분을 선택해주세요.")
	}
	if len([]rune(organization)) > 20 {
		return errors.New("기관/장소는 20자를 초과할 수 없습니다.")
	}
	if !yearMonthRegex.MatchString(startDate) || !yearMonthRegex.MatchString(endDate) {
		return errors.New("날짜는 YYYY-MM 형식으로 입력해주세요.")
	}
	if len([]rune(description)) > 500 {
		return errors.New("활동내용은 500자를 초과할 수 없습니다.")
	}
	return nil
}

// Certification validates a single certification entry.
func Certification(name, issuingOrganization, acquisitionDate string) error {
	if name == "" || issuingOrganization == "" || acquisitionDate == "" {
		return errors.New("모든 필드를 입력해주세요.")
	}
	if len([]rune(name)) > 50 {
		return errors.New("자격증명은 50자를 초과할 수 없습니다.")
	}
	if len([]rune(issuingOrganization)) > 50 {
		return errors.New("발행처/기관은 50자를 초과할 수 없습니다.")
	}
	if !isoDateRegex.MatchString(acquisitionDate) {
		return errors.New("올바른 날짜 형식이 아닙니다.")
	}
	return nil
}
