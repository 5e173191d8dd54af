package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/stemsi/admissions-backend/internal/config"
	"github.com/stemsi/admissions-backend/internal/service"
	"golang.org/x/term"
)

// mint-token issues a bearer token for local testing, standing in for the identity provider.
func main() {
	var (
		role      string
		subject   string
		org       string
		askSecret bool
	)
	flag.StringVar(&role, "role", "", "student | institution_staff | company_staff (prompted when empty)")
	flag.StringVar(&subject, "sub", "", "User ID; a random one is generated when empty")
	flag.StringVar(&org, "org", "", "Institution or company ID, required for staff roles")
	flag.BoolVar(&askSecret, "ask-secret", false, "Prompt for the signing secret instead of using JWT_SECRET")
	flag.Parse()

	cfg := config.Load()
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Mint Access Token ===")

	if role == "" {
		fmt.Print("Enter Role (student/institution_staff/company_staff): ")
		line, _ := reader.ReadString('\n')
		role = strings.TrimSpace(line)
	}
	r := service.Role(role)
	if !r.Valid() {
		fmt.Printf("Error: unknown role %q\n", role)
		os.Exit(1)
	}

	userID := uuid.New()
	if subject != "" {
		id, err := uuid.Parse(subject)
		if err != nil {
			fmt.Println("Error: -sub must be a UUID")
			os.Exit(1)
		}
		userID = id
	}

	var orgID uuid.UUID
	if r != service.RoleStudent {
		if org == "" {
			fmt.Print("Enter Organization ID: ")
			line, _ := reader.ReadString('\n')
			org = strings.TrimSpace(line)
		}
		id, err := uuid.Parse(org)
		if err != nil {
			fmt.Println("Error: organization ID must be a UUID")
			os.Exit(1)
		}
		orgID = id
	}

	if askSecret {
		fmt.Print("Enter Signing Secret: ")
		secret, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			fmt.Println("Error reading secret")
			os.Exit(1)
		}
		if len(secret) < 16 {
			fmt.Println("Error: secret must be at least 16 bytes")
			os.Exit(1)
		}
		cfg.JWTSecret = string(secret)
	}

	token, err := service.NewTokenService(cfg).IssueToken(userID, r, orgID)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nSubject: %s\n", userID)
	if orgID != uuid.Nil {
		fmt.Printf("Organization: %s\n", orgID)
	}
	fmt.Printf("Expires in: %s\n\n%s\n", cfg.JWTExpiry, token)
}
