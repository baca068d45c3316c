package fragment

// Student is owned by exactly one fragment, chosen by routing its ID.
type Student struct {
	StudentID string `gorm:"column:student_id;primaryKey;size:64"`
	Name      string `gorm:"column:name;size:255"`
	Age       int    `gorm:"column:age"`
	Email     string `gorm:"column:email;size:255"`
}

// TableName pins the table name used by the raw statements
func (Student) TableName() string { return "student" }

// Grade lives on the same fragment as its student.
type Grade struct {
	StudentID string `gorm:"column:student_id;primaryKey;size:64"`
	CourseID  string `gorm:"column:course_id;primaryKey;size:64"`
	Score     int    `gorm:"column:score"`
}

// TableName pins the table name used by the raw statements
func (Grade) TableName() string { return "grade" }

// Course is replicated to every fragment so each one can resolve the
// department of the grades it holds.
type Course struct {
	CourseID   string `gorm:"column:course_id;primaryKey;size:64"`
	Department string `gorm:"column:department;size:255"`
}

// TableName pins the table name used by the raw statements
func (Course) TableName() string { return "course" }
