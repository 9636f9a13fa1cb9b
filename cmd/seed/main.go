package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"

	"github.com/crescentvet/clinic-booking/internal/clinic"
	"github.com/crescentvet/clinic-booking/internal/db"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	if err := db.Migrate(context.Background(), pool); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	gofakeit.Seed(time.Now().UnixNano())

	repo := clinic.NewPgRepository(pool)

	doctors, err := seedDoctors(context.Background(), repo, 3)
	if err != nil {
		log.Fatalf("seed doctors: %v", err)
	}
	if err := seedAppointments(context.Background(), repo, 60); err != nil {
		log.Fatalf("seed appointments: %v", err)
	}

	log.Printf("seed complete: %d doctors per specialty", len(doctors))
}

// seedDoctors creates perSpecialty doctors for each of the six departments,
// each with a linked login email so doctor tokens resolve in dev.
func seedDoctors(ctx context.Context, repo *clinic.PgRepository, perSpecialty int) ([]clinic.Doctor, error) {
	var doctors []clinic.Doctor
	for _, specialty := range clinic.ServiceKinds() {
		for i := 0; i < perSpecialty; i++ {
			account := gofakeit.Email()
			doc := clinic.Doctor{
				ID:           uuid.New(),
				Name:         gofakeit.Name(),
				Specialty:    specialty,
				Email:        gofakeit.Email(),
				Phone:        gofakeit.Phone(),
				Bio:          gofakeit.Sentence(12),
				AccountEmail: &account,
			}
			if err := repo.CreateDoctor(ctx, &doc); err != nil {
				return nil, err
			}
			doctors = append(doctors, doc)
		}
	}
	log.Printf("doctors seeded: %d", len(doctors))
	return doctors, nil
}

// seedAppointments creates pending booking requests spread over the next
// month, one per preferred slot to satisfy the uniqueness constraint.
func seedAppointments(ctx context.Context, repo *clinic.PgRepository, count int) error {
	species := []clinic.Species{
		clinic.SpeciesDog, clinic.SpeciesCat, clinic.SpeciesBird,
		clinic.SpeciesRabbit, clinic.SpeciesOther,
	}
	services := clinic.ServiceKinds()
	slots := clinic.DailySlots()

	day := time.Now().AddDate(0, 0, 1)
	slotIdx := 0

	for i := 0; i < count; i++ {
		if slotIdx >= len(slots) {
			slotIdx = 0
			day = day.AddDate(0, 0, 1)
		}

		now := time.Now()
		appt := clinic.Appointment{
			ID:               uuid.New(),
			Code:             fmt.Sprintf("SEED%04d", i),
			OwnerName:        gofakeit.Name(),
			Phone:            gofakeit.Phone(),
			Email:            gofakeit.Email(),
			PetName:          gofakeit.PetName(),
			PetSpecies:       species[gofakeit.Number(0, len(species)-1)],
			PetAge:           fmt.Sprintf("%d years", gofakeit.Number(1, 14)),
			PetWeight:        fmt.Sprintf("%d", gofakeit.Number(2, 40)),
			Reason:           gofakeit.Sentence(8),
			Service:          services[gofakeit.Number(0, len(services)-1)],
			PreferredDate:    day,
			PreferredTime:    slots[slotIdx],
			Status:           clinic.StatusPending,
			CompletionStatus: clinic.CompletionIncomplete,
			PaymentStatus:    clinic.PaymentPending,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if err := repo.CreateAppointment(ctx, &appt); err != nil {
			return err
		}
		slotIdx++
	}

	log.Printf("appointments seeded: %d", count)
	return nil
}
