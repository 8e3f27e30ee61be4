package database

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/lib/pq"
)

func Connect() (*sql.DB, error) {
	host := getEnv("DB_HOST", "localhost")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "ham_user")
	password := getEnv("DB_PASSWORD", "ham_password")
	dbname := getEnv("DB_NAME", "ham_prep")
	sslmode := getEnv("DB_SSLMODE", "disable")

	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return db, nil
}

func Migrate(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		email VARCHAR(255) UNIQUE NOT NULL,
		name VARCHAR(255) NOT NULL,
		callsign VARCHAR(10) UNIQUE,
		password VARCHAR(255) NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);

	CREATE TABLE IF NOT EXISTS subelements (
		code           VARCHAR(2) PRIMARY KEY,
		exam_type      VARCHAR(20) NOT NULL,
		name           VARCHAR(100) NOT NULL,
		exam_questions INT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_subelements_exam ON subelements(exam_type);

	CREATE TABLE IF NOT EXISTS questions (
		id              VARCHAR(8) PRIMARY KEY,
		subelement_code VARCHAR(2) NOT NULL REFERENCES subelements(code),
		question_text   TEXT NOT NULL,
		answer_a        TEXT NOT NULL,
		answer_b        TEXT NOT NULL,
		answer_c        TEXT NOT NULL,
		answer_d        TEXT NOT NULL,
		correct_answer  VARCHAR(1) NOT NULL,
		times_served    INT NOT NULL DEFAULT 0,
		created_at      TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_questions_subelement ON questions(subelement_code);
	CREATE INDEX IF NOT EXISTS idx_questions_serving ON questions(subelement_code, times_served);

	CREATE TABLE IF NOT EXISTS practice_attempts (
		id           BIGSERIAL PRIMARY KEY,
		user_id      BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		question_id  VARCHAR(8) NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
		correct      BOOLEAN NOT NULL,
		attempted_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_attempts_user_date ON practice_attempts(user_id, attempted_at DESC);
	CREATE INDEX IF NOT EXISTS idx_attempts_user_question ON practice_attempts(user_id, question_id);

	CREATE TABLE IF NOT EXISTS question_mastery (
		user_id       BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		question_id   VARCHAR(8) NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
		times_correct INT NOT NULL DEFAULT 0,
		times_wrong   INT NOT NULL DEFAULT 0,
		last_seen_at  TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		PRIMARY KEY (user_id, question_id)
	);

	CREATE INDEX IF NOT EXISTS idx_mastery_user_mastered ON question_mastery(user_id) WHERE times_correct >= 2;

	CREATE TABLE IF NOT EXISTS practice_test_results (
		id        BIGSERIAL PRIMARY KEY,
		user_id   BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		exam_type VARCHAR(20) NOT NULL,
		score     INT NOT NULL,
		total     INT NOT NULL,
		passed    BOOLEAN NOT NULL,
		taken_at  TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_tests_user_exam ON practice_test_results(user_id, exam_type);

	CREATE TABLE IF NOT EXISTS readiness_config (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS readiness_cache (
		user_id             BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		exam_type           VARCHAR(20) NOT NULL,
		readiness_score     DOUBLE PRECISION NOT NULL,
		pass_probability    DOUBLE PRECISION NOT NULL,
		expected_exam_score DOUBLE PRECISION NOT NULL,
		metrics             JSONB NOT NULL,
		subelements         JSONB NOT NULL,
		config_version      TEXT NOT NULL,
		calculated_at       TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
		PRIMARY KEY (user_id, exam_type)
	);

	CREATE TABLE IF NOT EXISTS readiness_snapshots (
		user_id             BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		exam_type           VARCHAR(20) NOT NULL,
		snapshot_date       DATE NOT NULL,
		readiness_score     DOUBLE PRECISION NOT NULL,
		pass_probability    DOUBLE PRECISION NOT NULL,
		expected_exam_score DOUBLE PRECISION NOT NULL,
		total_attempts      INT NOT NULL DEFAULT 0,
		unique_questions    INT NOT NULL DEFAULT 0,
		PRIMARY KEY (user_id, exam_type, snapshot_date)
	);

	CREATE INDEX IF NOT EXISTS idx_snapshots_user_exam ON readiness_snapshots(user_id, exam_type, snapshot_date DESC);
	`

	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if err := seedSubelements(db); err != nil {
		return fmt.Errorf("seed subelements: %w", err)
	}

	return nil
}

// subelementSeed mirrors the NCVEC question pool structure: each exam
// draws a fixed number of questions per subelement, and that count is
// the subelement's weight in readiness scoring.
type subelementSeed struct {
	code          string
	examType      string
	name          string
	examQuestions int
}

var subelementSeeds = []subelementSeed{
	{"T1", "technician", "Commission's Rules", 6},
	{"T2", "technician", "Operating Procedures", 3},
	{"T3", "technician", "Radio Wave Propagation", 3},
	{"T4", "technician", "Amateur Radio Practices", 2},
	{"T5", "technician", "Electrical Principles", 4},
	{"T6", "technician", "Electrical Components", 4},
	{"T7", "technician", "Practical Circuits", 4},
	{"T8", "technician", "Signals and Emissions", 4},
	{"T9", "technician", "Antennas and Feed Lines", 2},
	{"T0", "technician", "Safety", 3},
	{"G1", "general", "Commission's Rules", 5},
	{"G2", "general", "Operating Procedures", 5},
	{"G3", "general", "Radio Wave Propagation", 3},
	{"G4", "general", "Amateur Radio Practices", 5},
	{"G5", "general", "Electrical Principles", 3},
	{"G6", "general", "Circuit Components", 2},
	{"G7", "general", "Practical Circuits", 3},
	{"G8", "general", "Signals and Emissions", 3},
	{"G9", "general", "Antennas and Feed Lines", 4},
	{"G0", "general", "Electrical and RF Safety", 2},
	{"E1", "extra", "Commission's Rules", 6},
	{"E2", "extra", "Operating Procedures and Practices", 5},
	{"E3", "extra", "Radio Wave Propagation", 3},
	{"E4", "extra", "Amateur Practices", 5},
	{"E5", "extra", "Electrical Principles", 4},
	{"E6", "extra", "Circuit Components", 6},
	{"E7", "extra", "Practical Circuits", 8},
	{"E8", "extra", "Signals and Emissions", 4},
	{"E9", "extra", "Antennas and Transmission Lines", 8},
	{"E0", "extra", "Safety", 1},
}

func seedSubelements(db *sql.DB) error {
	for _, s := range subelementSeeds {
		_, err := db.Exec(
			`INSERT INTO subelements (code, exam_type, name, exam_questions)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (code) DO UPDATE SET name = $3, exam_questions = $4`,
			s.code, s.examType, s.name, s.examQuestions,
		)
		if err != nil {
			return fmt.Errorf("seed %s: %w", s.code, err)
		}
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
