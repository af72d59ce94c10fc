package services

import (
	"context"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/bhojsoft/testseries-service/internal/models"
	"github.com/bhojsoft/testseries-service/internal/repositories"
)

// stubRepository is an in-memory repositories.Repository for service tests.
// Filters are honored only as far as the tests need them.
type stubRepository struct {
	admins        map[uint]*models.Admin
	institutes    map[uint]*models.Institute
	teachers      map[uint]*models.Teacher
	students      map[uint]*models.Student
	questions     map[uint]*models.Question
	tests         map[uint]*models.Test
	testQuestions []models.TestQuestion
	submissions   map[uint]*models.Submission
	notifications map[uint]*models.Notification
	reviews       []models.Review
	courses       map[uint]*models.Course

	nextID uint
}

func newStubRepository() *stubRepository {
	return &stubRepository{
		admins:        make(map[uint]*models.Admin),
		institutes:    make(map[uint]*models.Institute),
		teachers:      make(map[uint]*models.Teacher),
		students:      make(map[uint]*models.Student),
		questions:     make(map[uint]*models.Question),
		tests:         make(map[uint]*models.Test),
		submissions:   make(map[uint]*models.Submission),
		notifications: make(map[uint]*models.Notification),
		courses:       make(map[uint]*models.Course),
	}
}

func (r *stubRepository) id() uint {
	r.nextID++
	return r.nextID
}

func pageFilters(limit, offset int) repositories.PageFilters {
	return repositories.PageFilters{Limit: limit, Offset: offset}
}

func (r *stubRepository) Admin() repositories.AdminRepository               { return &stubAdminRepo{r} }
func (r *stubRepository) Institute() repositories.InstituteRepository       { return &stubInstituteRepo{r} }
func (r *stubRepository) Teacher() repositories.TeacherRepository           { return &stubTeacherRepo{r} }
func (r *stubRepository) Student() repositories.StudentRepository           { return &stubStudentRepo{r} }
func (r *stubRepository) Question() repositories.QuestionRepository         { return &stubQuestionRepo{r} }
func (r *stubRepository) Test() repositories.TestRepository                 { return &stubTestRepo{r} }
func (r *stubRepository) Submission() repositories.SubmissionRepository     { return &stubSubmissionRepo{r} }
func (r *stubRepository) Notification() repositories.NotificationRepository { return &stubNotificationRepo{r} }
func (r *stubRepository) Review() repositories.ReviewRepository             { return &stubReviewRepo{r} }
func (r *stubRepository) Course() repositories.CourseRepository             { return &stubCourseRepo{r} }
func (r *stubRepository) Dashboard() repositories.DashboardRepository       { return &stubDashboardRepo{r} }

func (r *stubRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(r)
}

func (r *stubRepository) Ping(ctx context.Context) error { return nil }
func (r *stubRepository) Close() error                   { return nil }

// ===== seeding helpers =====

func (r *stubRepository) seedInstitute(inst models.Institute) *models.Institute {
	if inst.ID == 0 {
		inst.ID = r.id()
	}
	r.institutes[inst.ID] = &inst
	return &inst
}

func (r *stubRepository) seedTeacher(teacher models.Teacher) *models.Teacher {
	if teacher.ID == 0 {
		teacher.ID = r.id()
	}
	r.teachers[teacher.ID] = &teacher
	return &teacher
}

func (r *stubRepository) seedStudent(student models.Student) *models.Student {
	if student.ID == 0 {
		student.ID = r.id()
	}
	r.students[student.ID] = &student
	return &student
}

func (r *stubRepository) seedTest(test models.Test, questions ...models.Question) *models.Test {
	if test.ID == 0 {
		test.ID = r.id()
	}
	r.tests[test.ID] = &test
	for i := range questions {
		q := questions[i]
		if q.ID == 0 {
			q.ID = r.id()
		}
		r.questions[q.ID] = &q
		r.testQuestions = append(r.testQuestions, models.TestQuestion{
			TestID:     test.ID,
			QuestionID: q.ID,
			Position:   i + 1,
		})
	}
	return &test
}

func (r *stubRepository) seedSubmission(sub models.Submission) *models.Submission {
	if sub.ID == 0 {
		sub.ID = r.id()
	}
	r.submissions[sub.ID] = &sub
	return &sub
}

// ===== admin =====

type stubAdminRepo struct{ r *stubRepository }

func (s *stubAdminRepo) Create(ctx context.Context, tx *gorm.DB, admin *models.Admin) error {
	admin.ID = s.r.id()
	stored := *admin
	s.r.admins[admin.ID] = &stored
	return nil
}

func (s *stubAdminRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Admin, error) {
	admin, ok := s.r.admins[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *admin
	return &copied, nil
}

func (s *stubAdminRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.Admin, error) {
	for _, admin := range s.r.admins {
		if admin.Email == email {
			copied := *admin
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *stubAdminRepo) Update(ctx context.Context, tx *gorm.DB, admin *models.Admin) error {
	if _, ok := s.r.admins[admin.ID]; !ok {
		return repositories.ErrNotFound
	}
	stored := *admin
	s.r.admins[admin.ID] = &stored
	return nil
}

func (s *stubAdminRepo) ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	_, err := s.GetByEmail(ctx, tx, email)
	if err == nil {
		return true, nil
	}
	return false, nil
}

// ===== institute =====

type stubInstituteRepo struct{ r *stubRepository }

func (s *stubInstituteRepo) Create(ctx context.Context, tx *gorm.DB, institute *models.Institute) error {
	institute.ID = s.r.id()
	stored := *institute
	s.r.institutes[institute.ID] = &stored
	return nil
}

func (s *stubInstituteRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Institute, error) {
	institute, ok := s.r.institutes[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *institute
	return &copied, nil
}

func (s *stubInstituteRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.Institute, error) {
	for _, institute := range s.r.institutes {
		if institute.Email == email {
			copied := *institute
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *stubInstituteRepo) Update(ctx context.Context, tx *gorm.DB, institute *models.Institute) error {
	if _, ok := s.r.institutes[institute.ID]; !ok {
		return repositories.ErrNotFound
	}
	stored := *institute
	s.r.institutes[institute.ID] = &stored
	return nil
}

func (s *stubInstituteRepo) SetApproved(ctx context.Context, tx *gorm.DB, id uint, approved bool) error {
	institute, ok := s.r.institutes[id]
	if !ok {
		return repositories.ErrNotFound
	}
	institute.IsApproved = approved
	return nil
}

func (s *stubInstituteRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.PageFilters) ([]models.Institute, int64, error) {
	var out []models.Institute
	for _, institute := range s.r.institutes {
		out = append(out, *institute)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (s *stubInstituteRepo) ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	_, err := s.GetByEmail(ctx, tx, email)
	return err == nil, nil
}

func (s *stubInstituteRepo) GetTeachers(ctx context.Context, tx *gorm.DB, instituteID uint) ([]models.Teacher, error) {
	var out []models.Teacher
	for _, teacher := range s.r.teachers {
		if teacher.InstituteID == instituteID {
			out = append(out, *teacher)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *stubInstituteRepo) GetStudents(ctx context.Context, tx *gorm.DB, instituteID uint) ([]models.Student, error) {
	var out []models.Student
	for _, student := range s.r.students {
		if student.InstituteID != nil && *student.InstituteID == instituteID {
			out = append(out, *student)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ===== teacher =====

type stubTeacherRepo struct{ r *stubRepository }

func (s *stubTeacherRepo) Create(ctx context.Context, tx *gorm.DB, teacher *models.Teacher) error {
	teacher.ID = s.r.id()
	stored := *teacher
	s.r.teachers[teacher.ID] = &stored
	return nil
}

func (s *stubTeacherRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Teacher, error) {
	teacher, ok := s.r.teachers[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *teacher
	if institute, ok := s.r.institutes[teacher.InstituteID]; ok {
		instCopy := *institute
		copied.Institute = &instCopy
	}
	return &copied, nil
}

func (s *stubTeacherRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.Teacher, error) {
	for _, teacher := range s.r.teachers {
		if teacher.Email == email {
			copied := *teacher
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *stubTeacherRepo) Update(ctx context.Context, tx *gorm.DB, teacher *models.Teacher) error {
	if _, ok := s.r.teachers[teacher.ID]; !ok {
		return repositories.ErrNotFound
	}
	stored := *teacher
	s.r.teachers[teacher.ID] = &stored
	return nil
}

func (s *stubTeacherRepo) SetApproved(ctx context.Context, tx *gorm.DB, id uint, approved bool) error {
	teacher, ok := s.r.teachers[id]
	if !ok {
		return repositories.ErrNotFound
	}
	teacher.IsApproved = approved
	return nil
}

func (s *stubTeacherRepo) ListByInstitute(ctx context.Context, tx *gorm.DB, instituteID uint, filters repositories.PageFilters) ([]models.Teacher, int64, error) {
	out, _ := (&stubInstituteRepo{s.r}).GetTeachers(ctx, tx, instituteID)
	return out, int64(len(out)), nil
}

func (s *stubTeacherRepo) ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	_, err := s.GetByEmail(ctx, tx, email)
	return err == nil, nil
}

// ===== student =====

type stubStudentRepo struct{ r *stubRepository }

func (s *stubStudentRepo) Create(ctx context.Context, tx *gorm.DB, student *models.Student) error {
	student.ID = s.r.id()
	stored := *student
	s.r.students[student.ID] = &stored
	return nil
}

func (s *stubStudentRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Student, error) {
	student, ok := s.r.students[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *student
	return &copied, nil
}

func (s *stubStudentRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.Student, error) {
	for _, student := range s.r.students {
		if student.Email == email {
			copied := *student
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *stubStudentRepo) Update(ctx context.Context, tx *gorm.DB, student *models.Student) error {
	if _, ok := s.r.students[student.ID]; !ok {
		return repositories.ErrNotFound
	}
	stored := *student
	s.r.students[student.ID] = &stored
	return nil
}

func (s *stubStudentRepo) SetInstitute(ctx context.Context, tx *gorm.DB, studentID uint, instituteID *uint) error {
	student, ok := s.r.students[studentID]
	if !ok {
		return repositories.ErrNotFound
	}
	student.InstituteID = instituteID
	return nil
}

func (s *stubStudentRepo) MarkEmailVerified(ctx context.Context, tx *gorm.DB, studentID uint) error {
	student, ok := s.r.students[studentID]
	if !ok {
		return repositories.ErrNotFound
	}
	student.EmailVerified = true
	return nil
}

func (s *stubStudentRepo) ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	_, err := s.GetByEmail(ctx, tx, email)
	return err == nil, nil
}

// ===== question =====

type stubQuestionRepo struct{ r *stubRepository }

func (s *stubQuestionRepo) Create(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	question.ID = s.r.id()
	stored := *question
	s.r.questions[question.ID] = &stored
	return nil
}

func (s *stubQuestionRepo) CreateBatch(ctx context.Context, tx *gorm.DB, questions []*models.Question) error {
	for _, q := range questions {
		if err := s.Create(ctx, tx, q); err != nil {
			return err
		}
	}
	return nil
}

func (s *stubQuestionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error) {
	question, ok := s.r.questions[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *question
	return &copied, nil
}

func (s *stubQuestionRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]models.Question, error) {
	var out []models.Question
	for _, id := range ids {
		if question, ok := s.r.questions[id]; ok {
			out = append(out, *question)
		}
	}
	return out, nil
}

func (s *stubQuestionRepo) Update(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	if _, ok := s.r.questions[question.ID]; !ok {
		return repositories.ErrNotFound
	}
	stored := *question
	s.r.questions[question.ID] = &stored
	return nil
}

func (s *stubQuestionRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	delete(s.r.questions, id)
	return nil
}

func (s *stubQuestionRepo) GetByTest(ctx context.Context, tx *gorm.DB, testID uint) ([]models.Question, error) {
	var rows []models.TestQuestion
	for _, tq := range s.r.testQuestions {
		if tq.TestID == testID {
			rows = append(rows, tq)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Position < rows[j].Position })

	var out []models.Question
	for _, tq := range rows {
		if question, ok := s.r.questions[tq.QuestionID]; ok {
			out = append(out, *question)
		}
	}
	return out, nil
}

// ===== test =====

type stubTestRepo struct{ r *stubRepository }

func (s *stubTestRepo) Create(ctx context.Context, tx *gorm.DB, test *models.Test) error {
	test.ID = s.r.id()
	stored := *test
	s.r.tests[test.ID] = &stored
	return nil
}

func (s *stubTestRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Test, error) {
	test, ok := s.r.tests[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *test
	return &copied, nil
}

func (s *stubTestRepo) Update(ctx context.Context, tx *gorm.DB, test *models.Test) error {
	if _, ok := s.r.tests[test.ID]; !ok {
		return repositories.ErrNotFound
	}
	stored := *test
	s.r.tests[test.ID] = &stored
	return nil
}

func (s *stubTestRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	if _, ok := s.r.tests[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.r.tests, id)
	return nil
}

func (s *stubTestRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.TestFilters) ([]models.Test, int64, error) {
	var out []models.Test
	for _, test := range s.r.tests {
		if filters.IsApproved != nil && test.IsApproved != *filters.IsApproved {
			continue
		}
		if filters.CreatedByID != nil && test.CreatedByID != *filters.CreatedByID {
			continue
		}
		if filters.CreatedByRole != nil && test.CreatedByRole != *filters.CreatedByRole {
			continue
		}
		if filters.InstituteID != nil && (test.InstituteID == nil || *test.InstituteID != *filters.InstituteID) {
			continue
		}
		if filters.Subject != nil && test.Subject != *filters.Subject {
			continue
		}
		if filters.VisibleOnly {
			visible := test.Visibility == models.VisibilityAll ||
				(filters.VisibleToInstitute != nil && test.InstituteID != nil &&
					*test.InstituteID == *filters.VisibleToInstitute)
			if !visible {
				continue
			}
		}
		out = append(out, *test)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (s *stubTestRepo) SetApproved(ctx context.Context, tx *gorm.DB, id uint, approved bool) error {
	test, ok := s.r.tests[id]
	if !ok {
		return repositories.ErrNotFound
	}
	test.IsApproved = approved
	return nil
}

func (s *stubTestRepo) IncrementViews(ctx context.Context, tx *gorm.DB, id uint) error {
	test, ok := s.r.tests[id]
	if !ok {
		return repositories.ErrNotFound
	}
	test.Views++
	return nil
}

func (s *stubTestRepo) TopByViews(ctx context.Context, tx *gorm.DB, limit int) ([]models.Test, error) {
	var out []models.Test
	for _, test := range s.r.tests {
		if test.IsApproved {
			out = append(out, *test)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Views > out[j].Views })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *stubTestRepo) ListByInstituteTeachers(ctx context.Context, tx *gorm.DB, instituteID uint, filters repositories.PageFilters) ([]models.Test, int64, error) {
	var out []models.Test
	for _, test := range s.r.tests {
		if test.CreatedByRole != models.RoleTeacher {
			continue
		}
		teacher, ok := s.r.teachers[test.CreatedByID]
		if !ok || teacher.InstituteID != instituteID {
			continue
		}
		out = append(out, *test)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (s *stubTestRepo) AddQuestions(ctx context.Context, tx *gorm.DB, testID uint, rows []models.TestQuestion) error {
	for _, row := range rows {
		row.TestID = testID
		s.r.testQuestions = append(s.r.testQuestions, row)
	}
	return nil
}

func (s *stubTestRepo) RemoveQuestions(ctx context.Context, tx *gorm.DB, testID uint, questionIDs []uint) error {
	remove := make(map[uint]bool, len(questionIDs))
	for _, id := range questionIDs {
		remove[id] = true
	}
	kept := s.r.testQuestions[:0]
	for _, tq := range s.r.testQuestions {
		if tq.TestID == testID && remove[tq.QuestionID] {
			continue
		}
		kept = append(kept, tq)
	}
	s.r.testQuestions = kept
	return nil
}

func (s *stubTestRepo) CountQuestions(ctx context.Context, tx *gorm.DB, testID uint) (int64, error) {
	var count int64
	for _, tq := range s.r.testQuestions {
		if tq.TestID == testID {
			count++
		}
	}
	return count, nil
}

// ===== submission =====

type stubSubmissionRepo struct{ r *stubRepository }

func (s *stubSubmissionRepo) Create(ctx context.Context, tx *gorm.DB, submission *models.Submission) error {
	submission.ID = s.r.id()
	stored := *submission
	s.r.submissions[submission.ID] = &stored
	return nil
}

func (s *stubSubmissionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Submission, error) {
	submission, ok := s.r.submissions[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *submission
	return &copied, nil
}

func (s *stubSubmissionRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.SubmissionFilters) ([]models.Submission, int64, error) {
	var out []models.Submission
	for _, submission := range s.r.submissions {
		if filters.TestID != nil && submission.TestID != *filters.TestID {
			continue
		}
		if filters.StudentID != nil && submission.StudentID != *filters.StudentID {
			continue
		}
		out = append(out, *submission)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (s *stubSubmissionRepo) CountByStudentAndTest(ctx context.Context, tx *gorm.DB, studentID, testID uint) (int64, error) {
	var count int64
	for _, submission := range s.r.submissions {
		if submission.StudentID == studentID && submission.TestID == testID {
			count++
		}
	}
	return count, nil
}

func (s *stubSubmissionRepo) GetStudentStats(ctx context.Context, tx *gorm.DB, studentID uint) (*repositories.StudentStats, error) {
	stats := &repositories.StudentStats{}
	var sum float64
	for _, submission := range s.r.submissions {
		if submission.StudentID != studentID {
			continue
		}
		stats.TestsTaken++
		sum += submission.Score
		if submission.Score > stats.BestScore {
			stats.BestScore = submission.Score
		}
	}
	if stats.TestsTaken > 0 {
		stats.AverageScore = sum / float64(stats.TestsTaken)
	}
	return stats, nil
}

// ===== notification =====

type stubNotificationRepo struct{ r *stubRepository }

func (s *stubNotificationRepo) Create(ctx context.Context, tx *gorm.DB, notification *models.Notification) error {
	notification.ID = s.r.id()
	stored := *notification
	s.r.notifications[notification.ID] = &stored
	return nil
}

func (s *stubNotificationRepo) CreateBatch(ctx context.Context, tx *gorm.DB, notifications []*models.Notification) error {
	for _, n := range notifications {
		if err := s.Create(ctx, tx, n); err != nil {
			return err
		}
	}
	return nil
}

func (s *stubNotificationRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Notification, error) {
	notification, ok := s.r.notifications[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *notification
	return &copied, nil
}

func (s *stubNotificationRepo) MarkSeen(ctx context.Context, tx *gorm.DB, id uint) error {
	notification, ok := s.r.notifications[id]
	if !ok {
		return repositories.ErrNotFound
	}
	notification.IsSeen = true
	return nil
}

func (s *stubNotificationRepo) ListByRecipient(ctx context.Context, tx *gorm.DB, recipientID uint, role models.Role, filters repositories.NotificationFilters) ([]models.Notification, int64, error) {
	var out []models.Notification
	for _, notification := range s.r.notifications {
		if notification.RecipientID != recipientID || notification.RecipientRole != role {
			continue
		}
		if filters.UnseenOnly && notification.IsSeen {
			continue
		}
		out = append(out, *notification)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

// ===== review =====

type stubReviewRepo struct{ r *stubRepository }

func (s *stubReviewRepo) Create(ctx context.Context, tx *gorm.DB, review *models.Review) error {
	review.ID = s.r.id()
	s.r.reviews = append(s.r.reviews, *review)
	return nil
}

func (s *stubReviewRepo) ListByTest(ctx context.Context, tx *gorm.DB, testID uint, filters repositories.PageFilters) ([]models.Review, int64, error) {
	var out []models.Review
	for _, review := range s.r.reviews {
		if review.TestID == testID {
			out = append(out, review)
		}
	}
	return out, int64(len(out)), nil
}

// ===== course =====

type stubCourseRepo struct{ r *stubRepository }

func (s *stubCourseRepo) Create(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	course.ID = s.r.id()
	stored := *course
	s.r.courses[course.ID] = &stored
	return nil
}

func (s *stubCourseRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error) {
	course, ok := s.r.courses[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *course
	return &copied, nil
}

func (s *stubCourseRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.PageFilters) ([]models.Course, int64, error) {
	var out []models.Course
	for _, course := range s.r.courses {
		out = append(out, *course)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (s *stubCourseRepo) SearchByName(ctx context.Context, tx *gorm.DB, name string, filters repositories.PageFilters) ([]models.Course, int64, error) {
	var out []models.Course
	for _, course := range s.r.courses {
		if strings.Contains(strings.ToLower(course.Name), strings.ToLower(name)) {
			out = append(out, *course)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

// ===== dashboard =====

type stubDashboardRepo struct{ r *stubRepository }

func (s *stubDashboardRepo) TestCountBySubject(ctx context.Context) ([]repositories.SubjectCount, error) {
	counts := make(map[string]int64)
	for _, test := range s.r.tests {
		if test.IsApproved {
			counts[test.Subject]++
		}
	}
	var out []repositories.SubjectCount
	for subject, count := range counts {
		out = append(out, repositories.SubjectCount{Subject: subject, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Subject < out[j].Subject })
	return out, nil
}

func (s *stubDashboardRepo) TopStudentsByAverageScore(ctx context.Context, limit int) ([]repositories.StudentScore, error) {
	var out []repositories.StudentScore
	for id, student := range s.r.students {
		stats, _ := (&stubSubmissionRepo{s.r}).GetStudentStats(ctx, nil, id)
		if stats.TestsTaken == 0 {
			continue
		}
		out = append(out, repositories.StudentScore{
			StudentID:    id,
			Name:         student.Name,
			Email:        student.Email,
			AverageScore: stats.AverageScore,
			TestsTaken:   stats.TestsTaken,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AverageScore > out[j].AverageScore })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *stubDashboardRepo) CompletionPercentage(ctx context.Context, studentID uint) (float64, error) {
	var approved int
	for _, test := range s.r.tests {
		if test.IsApproved {
			approved++
		}
	}
	if approved == 0 {
		return 0, nil
	}
	taken := make(map[uint]bool)
	for _, submission := range s.r.submissions {
		if submission.StudentID == studentID {
			taken[submission.TestID] = true
		}
	}
	return float64(len(taken)) / float64(approved) * 100, nil
}

func (s *stubDashboardRepo) SearchStudentsWithScores(ctx context.Context, name string, limit, offset int) ([]repositories.StudentScore, int64, error) {
	var out []repositories.StudentScore
	for id, student := range s.r.students {
		if !strings.Contains(strings.ToLower(student.Name), strings.ToLower(name)) {
			continue
		}
		stats, _ := (&stubSubmissionRepo{s.r}).GetStudentStats(ctx, nil, id)
		if stats.TestsTaken == 0 {
			continue
		}
		out = append(out, repositories.StudentScore{
			StudentID:    id,
			Name:         student.Name,
			Email:        student.Email,
			AverageScore: stats.AverageScore,
			TestsTaken:   stats.TestsTaken,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StudentID < out[j].StudentID })
	return out, int64(len(out)), nil
}
