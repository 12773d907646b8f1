package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"winqroo/config"
	"winqroo/database"
	"winqroo/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/crypto/bcrypt"
)

type seedService struct {
	Name        string
	Description string
	Duration    int
	Price       float64
	Category    string
}

type seedShop struct {
	OwnerName   string
	OwnerEmail  string
	OwnerPhone  string
	Name        string
	Description string
	Street      string
	City        string
	State       string
	ZipCode     string
	Coordinates []float64 // [longitude, latitude]
	Services    []seedService
}

func main() {
	config.LoadConfig()
	database.InitDB()
	client := database.MongoClient
	db := client.Database(database.DBName())

	usersColl := db.Collection("users")
	shopsColl := db.Collection("shops")
	servicesColl := db.Collection("services")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Clear existing data.
	for _, coll := range []string{"users", "shops", "services", "queues", "appointments"} {
		if _, err := db.Collection(coll).DeleteMany(ctx, bson.M{}); err != nil {
			log.Fatalf("Failed to clear %s collection: %v", coll, err)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), 10)
	if err != nil {
		log.Fatalf("Failed to hash demo password: %v", err)
	}

	shopData := []seedShop{
		{
			OwnerName: "Rajesh Kumar", OwnerEmail: "rajesh@rajhairsalon.com", OwnerPhone: "+91-836-2345678",
			Name:        "Raj Hair Salon",
			Description: "Premium hair salon offering modern haircuts and styling services in Dharwad",
			Street:      "Station Road, Near City Bus Stand", City: "Dharwad", State: "Karnataka", ZipCode: "580001",
			Coordinates: []float64{75.0078, 15.4589},
			Services: []seedService{
				{"Classic Haircut", "Traditional men's haircut", 30, 150, "Haircut"},
				{"Beard Trim", "Professional beard trimming", 20, 80, "Grooming"},
				{"Haircut + Beard", "Complete grooming package", 45, 200, "Package"},
				{"Hot Towel Shave", "Traditional hot towel shave", 25, 120, "Shave"},
			},
		},
		{
			OwnerName: "Kumar Reddy", OwnerEmail: "kumar@kumarhairstudio.com", OwnerPhone: "+91-836-2456789",
			Name:        "Kumar Hair Studio",
			Description: "Modern salon with trendy cuts and styling in Dharwad",
			Street:      "KCD Circle, Near Hubli-Dharwad Road", City: "Dharwad", State: "Karnataka", ZipCode: "580001",
			Coordinates: []float64{75.0120, 15.4620},
			Services: []seedService{
				{"Fade Cut", "Modern fade haircut", 35, 180, "Haircut"},
				{"Hair Styling", "Professional styling", 20, 100, "Styling"},
				{"Hair Wash & Cut", "Wash, cut, and style", 45, 250, "Package"},
			},
		},
		{
			OwnerName: "Suresh Naik", OwnerEmail: "suresh@naikbarbershop.com", OwnerPhone: "+91-836-2567890",
			Name:        "Naik Barber Shop",
			Description: "Classic barbershop with traditional charm in Dharwad",
			Street:      "Gandhi Chowk, Near Old Bus Stand", City: "Dharwad", State: "Karnataka", ZipCode: "580001",
			Coordinates: []float64{75.0050, 15.4550},
			Services: []seedService{
				{"Traditional Cut", "Classic barbershop cut", 30, 120, "Haircut"},
				{"Straight Razor Shave", "Traditional straight razor", 30, 100, "Shave"},
				{"Mustache Trim", "Precise mustache trimming", 15, 60, "Grooming"},
			},
		},
		{
			OwnerName: "Priya Shetty", OwnerEmail: "priya@premiumcutsdharwad.com", OwnerPhone: "+91-836-2678901",
			Name:        "Premium Cuts Dharwad",
			Description: "Luxury grooming experience for the modern gentleman in Dharwad",
			Street:      "SDM College Road, Near Saptapur", City: "Dharwad", State: "Karnataka", ZipCode: "580009",
			Coordinates: []float64{75.0150, 15.4650},
			Services: []seedService{
				{"Executive Cut", "Premium haircut for professionals", 40, 300, "Haircut"},
				{"Royal Shave", "Luxury shaving experience", 35, 250, "Shave"},
				{"Complete Grooming", "Full service grooming", 60, 500, "Package"},
			},
		},
	}

	now := time.Now()
	serviceCount := 0

	for i, data := range shopData {
		owner := models.User{
			ID:           uuid.New().String(),
			Name:         data.OwnerName,
			Email:        data.OwnerEmail,
			PasswordHash: string(hash),
			Role:         models.RoleShopOwner,
			CustomerType: models.CustomerStandard,
			Phone:        data.OwnerPhone,
			CreatedAt:    now,
		}
		if _, err := usersColl.InsertOne(ctx, owner); err != nil {
			log.Fatalf("Failed to insert owner %s: %v", owner.Email, err)
		}

		shop := models.Shop{
			ID:          uuid.New().String(),
			OwnerID:     owner.ID,
			Name:        data.Name,
			Description: data.Description,
			Address: models.Address{
				Street:  data.Street,
				City:    data.City,
				State:   data.State,
				ZipCode: data.ZipCode,
			},
			Location: models.GeoPoint{Type: "Point", Coordinates: data.Coordinates},
			Phone:    data.OwnerPhone,
			Email:    data.OwnerEmail,
			Rating:   models.Rating{Average: 4.5, Count: 25},
			IsActive: true, CreatedAt: now, UpdatedAt: now,
		}
		if _, err := shopsColl.InsertOne(ctx, shop); err != nil {
			log.Fatalf("Failed to insert shop %s: %v", shop.Name, err)
		}

		var svcDocs []interface{}
		for _, svc := range data.Services {
			svcDocs = append(svcDocs, models.Service{
				ID:          uuid.New().String(),
				ShopID:      shop.ID,
				Name:        svc.Name,
				Description: svc.Description,
				Duration:    svc.Duration,
				Price:       svc.Price,
				Category:    svc.Category,
				IsActive:    true,
				CreatedAt:   now,
				UpdatedAt:   now,
			})
		}
		if _, err := servicesColl.InsertMany(ctx, svcDocs); err != nil {
			log.Fatalf("Failed to insert services for %s: %v", shop.Name, err)
		}
		serviceCount += len(svcDocs)

		fmt.Printf("Shop %d/%d seeded: %s (%d services)\n", i+1, len(shopData), shop.Name, len(svcDocs))
	}

	customers := []models.User{
		{
			ID: uuid.New().String(), Name: "Arjun Sharma", Email: "arjun@example.com",
			PasswordHash: string(hash), Role: models.RoleCustomer,
			CustomerType: models.CustomerStandard, Phone: "+91-9876543210", CreatedAt: now,
		},
		{
			ID: uuid.New().String(), Name: "Priyanka Patel", Email: "priyanka@example.com",
			PasswordHash: string(hash), Role: models.RoleCustomer,
			CustomerType: models.CustomerRegular, Phone: "+91-9876543211", CreatedAt: now,
		},
		{
			ID: uuid.New().String(), Name: "Vikram Joshi", Email: "vikram@example.com",
			PasswordHash: string(hash), Role: models.RoleCustomer,
			CustomerType: models.CustomerVIP, Phone: "+91-9876543212", CreatedAt: now,
		},
	}
	for _, customer := range customers {
		if _, err := usersColl.InsertOne(ctx, customer); err != nil {
			log.Fatalf("Failed to insert customer %s: %v", customer.Email, err)
		}
	}

	fmt.Println("Seed data created successfully.")
	fmt.Printf("  %d shops, %d services, %d customers (all passwords: password123)\n",
		len(shopData), serviceCount, len(customers))
}
