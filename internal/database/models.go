package database

import (
	"time"
)

// JobSeeker 表示求职者账号，主键为学号。
type JobSeeker struct {
	ID           string `gorm:"primaryKey;size:15"`
	Email        string `gorm:"uniqueIndex;size:30"`
	PasswordHash string `gorm:"size:255"`
	CreatedAt    time.Time
}

// Employer 表示发布岗位的部门账号。
type Employer struct {
	ID             string `gorm:"primaryKey;size:20"`
	PasswordHash   string `gorm:"size:255"`
	DepartmentName string `gorm:"size:50;index"`
	PhoneNumber    string `gorm:"size:13"`
	Email          string `gorm:"size:30"`
	CreatedAt      time.Time
}

// Manager 表示管理员账号，拥有跨账号的查看与删除权限。
type Manager struct {
	ID           string `gorm:"primaryKey;size:20"`
	PasswordHash string `gorm:"size:255"`
	CreatedAt    time.Time
}

// JobPosting 表示一条招聘公告。
// 公告没有独立的开/关状态字段：截止日期(ISO 日期串)与当天比较即可得出 active/closed。
type JobPosting struct {
	ID                  uint     `gorm:"primaryKey"`
	EmployerID          string   `gorm:"size:20;index"`
	Employer            Employer `gorm:"constraint:OnDelete:CASCADE"`
	Title               string   `gorm:"size:50"`
	Contents            string   `gorm:"type:text"`
	CompanyName         string   `gorm:"size:50"`
	Location            string   `gorm:"size:100"`
	QualificationType   string   `gorm:"size:30"`
	WorkPeriodStart     string   `gorm:"size:10"`
	WorkPeriodEnd       string   `gorm:"size:10"`
	RecruitmentDeadline string   `gorm:"size:10;index"`
	HourlyWage          int
	ApplicationMethod   string `gorm:"size:30"`
	ContactNumber       string `gorm:"size:13"`
	CreatedAt           time.Time
}

// Application 连接公告与求职者，携带审核状态。
// (job_posting_id, job_seeker_id) 上的唯一索引保证同一人对同一公告至多一条记录，
// 并发重复提交由数据库约束兜底，而不是先查后插。
// 两侧外键让晚到的插入在公告/账号删除后被数据库直接拒绝。
type Application struct {
	ID           uint              `gorm:"primaryKey"`
	JobPostingID uint              `gorm:"uniqueIndex:idx_application_once"`
	JobPosting   JobPosting        `gorm:"constraint:OnDelete:CASCADE"`
	JobSeekerID  string            `gorm:"uniqueIndex:idx_application_once;size:15"`
	JobSeeker    JobSeeker         `gorm:"constraint:OnDelete:CASCADE"`
	Status       ApplicationStatus `gorm:"size:32"`
	AppliedAt    time.Time         `gorm:"autoCreateTime"`
	UpdatedAt    time.Time         `gorm:"autoUpdateTime"`
}

// BasicInfo 是求职者的基本信息，每人至多一行（jobSeeker 维度唯一）。
type BasicInfo struct {
	ID          uint      `gorm:"primaryKey"`
	JobSeekerID string    `gorm:"uniqueIndex;size:15"`
	JobSeeker   JobSeeker `gorm:"constraint:OnDelete:CASCADE"`
	Name        string    `gorm:"size:20"`
	BirthDate   string    `gorm:"size:10"`
	Email       string    `gorm:"size:30"`
	Phone       string    `gorm:"size:13"`
	Gender      string    `gorm:"size:10"`
	ImageKey    string    `gorm:"size:512"`
	UpdatedAt   time.Time
}

// Education 是求职者的学历信息，每人至多一行。
type Education struct {
	ID               uint      `gorm:"primaryKey"`
	JobSeekerID      string    `gorm:"uniqueIndex;size:15"`
	JobSeeker        JobSeeker `gorm:"constraint:OnDelete:CASCADE"`
	UniversityType   string    `gorm:"size:20"`
	SchoolName       string    `gorm:"size:50"`
	Region           string    `gorm:"size:30"`
	AdmissionDate    string    `gorm:"size:10"`
	GraduationDate   string    `gorm:"size:10"`
	GraduationStatus string    `gorm:"size:20"`
	Major            string    `gorm:"size:50"`
	UpdatedAt        time.Time
}

// ExperienceActivity 是求职者的经历/活动条目，每人可多行。
type ExperienceActivity struct {
	ID           uint      `gorm:"primaryKey"`
	JobSeekerID  string    `gorm:"index;size:15"`
	JobSeeker    JobSeeker `gorm:"constraint:OnDelete:CASCADE"`
	ActivityType string    `gorm:"size:20"`
	Organization string    `gorm:"size:20"`
	StartDate    string    `gorm:"size:7"`
	EndDate      string    `gorm:"size:7"`
	Description  string    `gorm:"size:500"`
	CreatedAt    time.Time
}

// Certification 是求职者的证书条目，每人可多行。
type Certification struct {
	ID                  uint      `gorm:"primaryKey"`
	JobSeekerID         string    `gorm:"index;size:15"`
	JobSeeker           JobSeeker `gorm:"constraint:OnDelete:CASCADE"`
	Name                string    `gorm:"size:50"`
	IssuingOrganization string    `gorm:"size:50"`
	AcquisitionDate     string    `gorm:"size:10"`
	CreatedAt           time.Time
}

// CareerStatement 是求职者的自我介绍，每人至多一行，五个自由文本段落。
type CareerStatement struct {
	ID            uint      `gorm:"primaryKey"`
	JobSeekerID   string    `gorm:"uniqueIndex;size:15"`
	JobSeeker     JobSeeker `gorm:"constraint:OnDelete:CASCADE"`
	GrowthProcess string    `gorm:"type:text"`
	Personality   string    `gorm:"type:text"`
	Motivation    string    `gorm:"type:text"`
	Aspiration    string    `gorm:"type:text"`
	CareerHistory string    `gorm:"type:text"`
	UpdatedAt     time.Time
}
