// seed inserts development sample data for local testing.
// Idempotent: skips inserts if the dev user (alice) already exists.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"octagram/backend/internal/config"
	"octagram/backend/internal/db"
	msgdomain "octagram/backend/internal/message/domain"
	msgrepo "octagram/backend/internal/message/repository"
	postdomain "octagram/backend/internal/post/domain"
	postrepo "octagram/backend/internal/post/repository"
	roledomain "octagram/backend/internal/role/domain"
	rolerepo "octagram/backend/internal/role/repository"
	"octagram/backend/internal/security"
	storydomain "octagram/backend/internal/story/domain"
	storyrepo "octagram/backend/internal/story/repository"
	userdomain "octagram/backend/internal/user/domain"
	userrepo "octagram/backend/internal/user/repository"
)

const (
	devPassword = "Password123"

	aliceID    = "dev-user-001"
	bobID      = "dev-user-002"
	adminID    = "dev-user-003"
	devPostID  = "dev-post-001"
	devPost2ID = "dev-post-002"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; put it in .env or the environment")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	ctx := context.Background()
	roles := rolerepo.NewPostgresRepository(conn)
	users := userrepo.NewPostgresRepository(conn)
	posts := postrepo.NewPostgresRepository(conn)
	stories := storyrepo.NewPostgresRepository(conn)
	messages := msgrepo.NewPostgresRepository(conn)

	if err := ensureRoles(ctx, roles); err != nil {
		log.Fatalf("ensure roles: %v", err)
	}

	existing, err := users.GetByUsername(ctx, "alice")
	if err != nil {
		log.Fatalf("seed check: %v", err)
	}
	if existing != nil {
		log.Println("Seed already applied (alice exists). Skipping.")
		os.Exit(0)
	}

	hasher := security.NewHasher(cfg.PBKDF2Iterations)
	passwordHash, err := hasher.Hash([]byte(devPassword))
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	now := time.Now().UTC()

	seedUsers := []userdomain.User{
		{
			ID:           aliceID,
			Username:     "alice",
			Email:        "alice@example.com",
			PasswordHash: passwordHash,
			Role:         userdomain.RoleUser,
			Bio:          "Coffee, film cameras, and the occasional sunset.",
			CreatedAt:    now,
		},
		{
			ID:           bobID,
			Username:     "bob",
			Email:        "bob@example.com",
			PasswordHash: passwordHash,
			Role:         userdomain.RoleUser,
			Bio:          "Mostly pictures of my dog.",
			CreatedAt:    now,
		},
		{
			ID:           adminID,
			Username:     "admin",
			Email:        "admin@example.com",
			PasswordHash: passwordHash,
			Role:         userdomain.RoleAdmin,
			CreatedAt:    now,
		},
	}
	for i := range seedUsers {
		if err := users.Create(ctx, &seedUsers[i]); err != nil {
			log.Fatalf("create user %s: %v", seedUsers[i].Username, err)
		}
	}

	seedPosts := []postdomain.Post{
		{
			ID:        devPostID,
			UserID:    aliceID,
			ImageURL:  "https://picsum.photos/seed/octagram-1/800/800",
			Caption:   "Golden hour from the pier",
			CreatedAt: now,
		},
		{
			ID:        devPost2ID,
			UserID:    bobID,
			ImageURL:  "https://picsum.photos/seed/octagram-2/800/800",
			Caption:   "He found the one muddy puddle in the park",
			CreatedAt: now.Add(time.Minute),
		},
	}
	for i := range seedPosts {
		if err := posts.Create(ctx, &seedPosts[i]); err != nil {
			log.Fatalf("create post: %v", err)
		}
	}

	if _, err := posts.AddLike(ctx, devPostID, bobID); err != nil {
		log.Fatalf("add like: %v", err)
	}
	if err := posts.AddComment(ctx, &postdomain.Comment{
		ID:        "dev-comment-001",
		PostID:    devPostID,
		UserID:    bobID,
		Content:   "Great shot!",
		CreatedAt: now.Add(2 * time.Minute),
	}); err != nil {
		log.Fatalf("add comment: %v", err)
	}

	if err := stories.Create(ctx, &storydomain.Story{
		ID:        "dev-story-001",
		UserID:    aliceID,
		MediaURL:  "https://picsum.photos/seed/octagram-story-1/1080/1920",
		MediaType: storydomain.MediaImage,
		CreatedAt: now,
		ExpiresAt: now.Add(24 * time.Hour),
	}); err != nil {
		log.Fatalf("create story: %v", err)
	}

	if err := messages.Create(ctx, &msgdomain.Message{
		ID:         "dev-message-001",
		SenderID:   aliceID,
		ReceiverID: bobID,
		Content:    "Hey, are you coming to the meetup tonight?",
		CreatedAt:  now.Add(3 * time.Minute),
	}); err != nil {
		log.Fatalf("create message: %v", err)
	}

	log.Println("Seed completed successfully.")
	fmt.Printf("Dev logins: alice / bob / admin, password %s\n", devPassword)
}

// ensureRoles creates the baseline roles when missing. The baseline migration
// inserts them too; this covers databases migrated before that revision.
func ensureRoles(ctx context.Context, roles *rolerepo.PostgresRepository) error {
	existing, err := roles.List(ctx)
	if err != nil {
		return err
	}
	have := make(map[string]bool, len(existing))
	for _, r := range existing {
		have[r.Name] = true
	}
	for _, name := range []string{userdomain.RoleUser, userdomain.RoleAdmin} {
		if have[name] {
			continue
		}
		if err := roles.Create(ctx, &roledomain.Role{ID: uuid.New().String(), Name: name}); err != nil {
			return err
		}
	}
	return nil
}
