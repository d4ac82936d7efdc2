// Command preflight checks that the collaborators configured in .env are
// reachable before the api and relay binaries are started.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/muhammedshamil8/CivicGuard/internal/config"
	"github.com/muhammedshamil8/CivicGuard/internal/database"
	"github.com/muhammedshamil8/CivicGuard/internal/features/relay"
	"github.com/muhammedshamil8/CivicGuard/internal/features/session"
	"github.com/muhammedshamil8/CivicGuard/internal/pkg/cloudinary"
	"github.com/muhammedshamil8/CivicGuard/internal/pkg/storage"
	"github.com/muhammedshamil8/CivicGuard/internal/pkg/validator"
)

func main() {
	cfg := config.Load()
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if cfg.StoreDriver == "memory" {
		fmt.Println("⏭  STORE_DRIVER=memory, skipping MongoDB")
	} else {
		fmt.Println("Testing MongoDB connection...")
		db, err := database.Connect(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			log.Fatal("MongoDB connection failed:", err)
		}
		defer db.Disconnect(context.Background())
		fmt.Println("✅ MongoDB connected successfully!")
	}

	fmt.Println("\nTesting Firebase Auth connection...")
	if _, err := session.NewFirebaseProvider(ctx, cfg.FirebaseServiceAccountPath, cfg.FirebaseAPIKey); err != nil {
		log.Fatal("Firebase initialization failed:", err)
	}
	fmt.Println("✅ Firebase Auth connected successfully!")

	fmt.Printf("\nTesting %s photo storage...\n", cfg.StorageDriver)
	switch cfg.StorageDriver {
	case "s3":
		s3, err := storage.NewS3Storage(ctx, storage.Config{
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKeyID,
			SecretKey: cfg.S3SecretAccessKey,
			PublicURL: cfg.S3PublicURL,
		})
		if err != nil {
			log.Fatal("S3 initialization failed:", err)
		}
		if err := s3.Ping(ctx); err != nil {
			log.Fatal("S3 bucket unreachable:", err)
		}
	default:
		cld, err := cloudinary.NewService(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryUploadFolder)
		if err != nil {
			log.Fatal("Cloudinary initialization failed:", err)
		}
		if err := cld.Ping(ctx); err != nil {
			log.Fatal("Cloudinary ping failed:", err)
		}
	}
	fmt.Println("✅ Photo storage connected successfully!")

	fmt.Println("\nTesting SMTP credentials...")
	if !validator.IsValidEmail(cfg.EmailUser) || !validator.IsValidEmail(cfg.EmailRecipient) {
		log.Fatal("EMAIL_USER and EMAIL_RECIPIENT must be valid addresses")
	}
	mailer, err := relay.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.EmailUser, cfg.EmailPassword, cfg.EmailRecipient)
	if err != nil {
		log.Fatal("SMTP configuration invalid:", err)
	}
	if err := mailer.Dial(); err != nil {
		log.Fatal("SMTP login failed:", err)
	}
	fmt.Println("✅ SMTP login succeeded!")

	fmt.Println("\nChecking Twilio configuration...")
	if _, err := relay.NewTwilioCaller(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber, cfg.TwilioToNumber, cfg.TwilioVoiceURL); err != nil {
		log.Fatal("Twilio configuration invalid:", err)
	}
	if !validator.IsValidURL(cfg.TwilioVoiceURL) {
		log.Fatal("TWILIO_VOICE_URL is not a valid URL")
	}
	fmt.Println("✅ Twilio configured!")

	fmt.Println("\nChecking outbound services...")
	for name, url := range map[string]string{"Relay": cfg.RelayURL, "Anchoring": cfg.AnchorURL} {
		if url == "" {
			fmt.Printf("⏭  %s URL not set\n", name)
			continue
		}
		if err := reachable(ctx, url); err != nil {
			log.Fatalf("%s service unreachable at %s: %v", name, url, err)
		}
		fmt.Printf("✅ %s reachable at %s\n", name, url)
	}

	fmt.Println("\n🎉 All systems ready!")
	fmt.Printf("  Store: %s (%s)\n", cfg.StoreDriver, cfg.MongoDB)
	fmt.Printf("  Photo storage: %s\n", cfg.StorageDriver)
}

// reachable treats any HTTP answer as success; only transport failures count.
func reachable(ctx context.Context, url string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	return resp.Body.Close()
}
