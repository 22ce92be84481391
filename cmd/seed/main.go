// seed inserts development sample data: locations, an admin, a lister and published listings.
// Idempotent: accounts that already exist are reused and listings are only added to a lister with none.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"bahayscout/backend/internal/config"
	"bahayscout/backend/internal/db"
	identitydomain "bahayscout/backend/internal/identity/domain"
	identityrepo "bahayscout/backend/internal/identity/repository"
	listingdomain "bahayscout/backend/internal/listing/domain"
	"bahayscout/backend/internal/listing/query"
	listingrepo "bahayscout/backend/internal/listing/repository"
	locationdomain "bahayscout/backend/internal/location/domain"
	locationrepo "bahayscout/backend/internal/location/repository"
	"bahayscout/backend/internal/logging"
	profiledomain "bahayscout/backend/internal/profile/domain"
	profilerepo "bahayscout/backend/internal/profile/repository"
	"bahayscout/backend/internal/security"
	userdomain "bahayscout/backend/internal/user/domain"
	userrepo "bahayscout/backend/internal/user/repository"
)

const devPassword = "password123"

type account struct {
	email, name string
	role        profiledomain.Role
}

var accounts = []account{
	{"admin@bahayscout.dev", "BahayScout Admin", profiledomain.RoleAdmin},
	{"lister@bahayscout.dev", "Maria Santos Realty", profiledomain.RoleLister},
	{"buyer@bahayscout.dev", "Juan Dela Cruz", profiledomain.RoleBuyer},
}

func strp(s string) *string { return &s }

var locations = []locationdomain.Location{
	{Region: "NCR", Province: "Metro Manila", CityMunicipality: "Makati", Barangay: strp("Poblacion"), PostalCode: strp("1210")},
	{Region: "NCR", Province: "Metro Manila", CityMunicipality: "Taguig", Barangay: strp("Fort Bonifacio"), PostalCode: strp("1634")},
	{Region: "NCR", Province: "Metro Manila", CityMunicipality: "Quezon City", Barangay: strp("Diliman"), PostalCode: strp("1101")},
	{Region: "Region VII", Province: "Cebu", CityMunicipality: "Cebu City", Barangay: strp("Lahug"), PostalCode: strp("6000")},
	{Region: "Region IV-A", Province: "Cavite", CityMunicipality: "Tagaytay", PostalCode: strp("4120")},
	{Region: "Region XI", Province: "Davao del Sur", CityMunicipality: "Davao City", Barangay: strp("Poblacion"), PostalCode: strp("8000")},
}

type sampleListing struct {
	title, description string
	category           listingdomain.Category
	propertyType       listingdomain.PropertyType
	price              int64
	period             *string
	beds, baths        int
	floor              float64
	location           int
	point              listingdomain.Point
}

var samples = []sampleListing{
	{
		title:        "Modern 1BR Condo in Poblacion, Makati",
		description:  "Fully furnished one-bedroom unit a short walk from Makati CBD, with pool, gym and 24/7 security.",
		category:     listingdomain.CategoryRent,
		propertyType: listingdomain.PropertyCondo,
		price:        25000, period: strp("month"), beds: 1, baths: 1, floor: 32,
		location: 0, point: listingdomain.Point{Lat: 14.5657, Lng: 121.0314},
	},
	{
		title:        "2BR Corner Unit at BGC with City View",
		description:  "Spacious corner unit in Bonifacio Global City with balcony, parking slot and access to High Street.",
		category:     listingdomain.CategorySale,
		propertyType: listingdomain.PropertyCondo,
		price:        18500000, beds: 2, baths: 2, floor: 78,
		location: 1, point: listingdomain.Point{Lat: 14.5509, Lng: 121.0503},
	},
	{
		title:        "House and Lot near UP Diliman",
		description:  "Four-bedroom family home on a quiet street near the university, with garden and two-car garage.",
		category:     listingdomain.CategorySale,
		propertyType: listingdomain.PropertyHouseLot,
		price:        24000000, beds: 4, baths: 3, floor: 220,
		location: 2, point: listingdomain.Point{Lat: 14.6537, Lng: 121.0687},
	},
	{
		title:        "Townhouse for Rent in Lahug, Cebu City",
		description:  "Three-storey townhouse close to IT Park, unfurnished, with carport and a small service area.",
		category:     listingdomain.CategoryRent,
		propertyType: listingdomain.PropertyTownhouse,
		price:        45000, period: strp("month"), beds: 3, baths: 2, floor: 140,
		location: 3, point: listingdomain.Point{Lat: 10.3312, Lng: 123.8987},
	},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logging:", err)
		os.Exit(1)
	}
	ctx := context.Background()
	conn, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("db", zap.Error(err))
	}
	defer conn.Close()

	if err := seed(ctx, conn, security.NewHasher(cfg.BcryptCost), log); err != nil {
		log.Fatal("seed failed", zap.Error(err))
	}
	log.Info("seed complete", zap.String("password", devPassword))
}

func seed(ctx context.Context, conn *sql.DB, hasher *security.Hasher, log *zap.Logger) error {
	locRepo := locationrepo.NewPostgresRepository(conn)
	locIDs := make([]int64, len(locations))
	for i := range locations {
		id, err := locRepo.Upsert(ctx, &locations[i])
		if err != nil {
			return fmt.Errorf("location %s: %w", locations[i].CityMunicipality, err)
		}
		locIDs[i] = id
	}

	users := userrepo.NewPostgresRepository(conn)
	identities := identityrepo.NewPostgresRepository(conn)
	profiles := profilerepo.NewPostgresRepository(conn)
	hash, err := hasher.Hash(devPassword)
	if err != nil {
		return err
	}
	var lister *profiledomain.Profile
	for _, a := range accounts {
		p, err := ensureAccount(ctx, users, identities, profiles, a, hash)
		if err != nil {
			return fmt.Errorf("account %s: %w", a.email, err)
		}
		log.Info("account ready", zap.String("email", a.email), zap.String("role", string(p.Role)))
		if a.role == profiledomain.RoleLister {
			lister = p
		}
	}

	listings := listingrepo.NewPostgresRepository(conn)
	_, total, err := listings.ListScoped(ctx, query.Scope{OwnerID: lister.ID}, listingdomain.Page{Page: 1, Limit: 1})
	if err != nil {
		return err
	}
	if total > 0 {
		log.Info("lister already has listings; skipping", zap.Int("count", total))
		return nil
	}
	for _, s := range samples {
		if err := createPublished(ctx, listings, lister.ID, locIDs[s.location], s); err != nil {
			return fmt.Errorf("listing %q: %w", s.title, err)
		}
	}
	log.Info("sample listings published", zap.Int("count", len(samples)))
	return nil
}

func ensureAccount(ctx context.Context, users *userrepo.PostgresRepository, identities *identityrepo.PostgresRepository,
	profiles *profilerepo.PostgresRepository, a account, passwordHash string) (*profiledomain.Profile, error) {
	u, err := users.GetByEmail(ctx, a.email)
	if err != nil {
		return nil, err
	}
	if u != nil {
		return profiles.GetByUserID(ctx, u.ID)
	}
	now := time.Now().UTC()
	u = &userdomain.User{ID: uuid.NewString(), Email: a.email, CreatedAt: now, UpdatedAt: now}
	ident := &identitydomain.Identity{
		ID:           uuid.NewString(),
		UserID:       u.ID,
		Provider:     identitydomain.IdentityProviderLocal,
		ProviderID:   a.email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
	}
	p := &profiledomain.Profile{
		ID:          uuid.NewString(),
		UserID:      u.ID,
		Role:        a.role,
		DisplayName: a.name,
		IsVerified:  a.role != profiledomain.RoleBuyer,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := identities.CreateAccount(ctx, u, ident, p); err != nil {
		return nil, err
	}
	return p, nil
}

func createPublished(ctx context.Context, repo *listingrepo.PostgresRepository, ownerID string, locationID int64, s sampleListing) error {
	slug, err := listingdomain.NewSlug(s.title)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	beds, baths, floor := s.beds, s.baths, s.floor
	point := s.point
	l := &listingdomain.Listing{
		ID:           uuid.NewString(),
		OwnerID:      ownerID,
		Status:       listingdomain.StatusDraft,
		Category:     s.category,
		PropertyType: s.propertyType,
		Title:        s.title,
		Description:  s.description,
		PricePHP:     s.price,
		PricePeriod:  s.period,
		Bedrooms:     &beds,
		Bathrooms:    &baths,
		FloorAreaSqm: &floor,
		LocationID:   &locationID,
		Slug:         slug,
		Point:        &point,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := repo.Create(ctx, l); err != nil {
		return err
	}
	for _, step := range [][2]listingdomain.Status{
		{listingdomain.StatusDraft, listingdomain.StatusPending},
		{listingdomain.StatusPending, listingdomain.StatusPublished},
	} {
		if _, err := repo.UpdateStatus(ctx, l.ID, step[0], step[1], nil); err != nil {
			return err
		}
	}
	return nil
}
