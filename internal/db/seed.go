package db

import (
	"context"
	"fmt"
	"log"

	"github.com/teamforge/reputation-engine/pkg/models"
)

// SeedDemo inserts a small demo dataset (three users, two lobbies) when
// the database has no users yet. Used for local dashboards; a populated
// database is left untouched.
func (s *PostgresStore) SeedDemo(ctx context.Context) error {
	var count int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM app_user`).Scan(&count); err != nil {
		return fmt.Errorf("failed to count users: %v", err)
	}
	if count > 0 {
		log.Println("Seed skipped: database already has users")
		return nil
	}

	users := []models.User{
		{Name: "Alice", Major: "CS", Year: "Senior", Bio: "Full-stack developer, likes algorithms and mentoring.", Contact: "alice@example.com", Phone: "555-0101", Email: "alice@example.com"},
		{Name: "Bob", Major: "Design", Year: "Junior", Bio: "UI/UX designer who focuses on clean interfaces and prototyping.", Contact: "https://dribbble.com/bob", Phone: "555-0202", Email: "bob@example.com"},
		{Name: "Carol", Major: "Business", Year: "Senior", Bio: "Business analyst and project manager.", Contact: "carol@example.com", Phone: "555-0303", Email: "carol@example.com"},
	}
	for i := range users {
		if err := s.CreateUser(ctx, &users[i]); err != nil {
			return err
		}
	}

	l1 := models.Lobby{Title: "ICPC Regional 2026 Team", ContestLink: "https://icpc.example", LeaderID: users[0].ID}
	t1, err := s.CreateLobby(ctx, &l1)
	if err != nil {
		return err
	}
	if err := s.AddTeamMember(ctx, t1.ID, users[1].ID); err != nil {
		return err
	}

	l2 := models.Lobby{Title: "Challenge Cup Team", ContestLink: "https://www.ChallengeCup.com", LeaderID: users[2].ID}
	if _, err := s.CreateLobby(ctx, &l2); err != nil {
		return err
	}

	log.Println("Seeded sample users and lobbies")
	return nil
}
