package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"clinicbooking/internal/db"
	apperrors "clinicbooking/internal/errors"
)

// defaultDoctors is served when no directory file is configured.
var defaultDoctors = []db.Doctor{
	{ID: 1, Name: "Dr. Anjali Menon", Specialization: "General Physician", Experience: "12 years"},
	{ID: 2, Name: "Dr. Rahul Nair", Specialization: "Cardiologist", Experience: "15 years"},
	{ID: 3, Name: "Dr. Fatima Rizvi", Specialization: "Dermatologist", Experience: "8 years"},
	{ID: 4, Name: "Dr. Joseph Thomas", Specialization: "Pediatrician", Experience: "10 years"},
}

// DoctorRepository is the read-only doctor directory, loaded once at startup.
type DoctorRepository struct {
	doctors []db.Doctor
	byID    map[int]db.Doctor
}

func NewDoctorRepository(doctors []db.Doctor) (*DoctorRepository, error) {
	r := &DoctorRepository{byID: make(map[int]db.Doctor, len(doctors))}
	for _, d := range doctors {
		if d.ID <= 0 {
			return nil, fmt.Errorf("doctor %q has invalid id %d", d.Name, d.ID)
		}
		if _, dup := r.byID[d.ID]; dup {
			return nil, fmt.Errorf("duplicate doctor id %d", d.ID)
		}
		r.byID[d.ID] = d
		r.doctors = append(r.doctors, d)
	}
	return r, nil
}

// LoadDoctorRepository reads a JSON array of doctors. An empty path selects
// the built-in directory.
func LoadDoctorRepository(path string) (*DoctorRepository, error) {
	if path == "" {
		return NewDoctorRepository(defaultDoctors)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewStorageError("read doctors file", err)
	}
	var doctors []db.Doctor
	if err := json.Unmarshal(data, &doctors); err != nil {
		return nil, apperrors.NewStorageError("parse doctors file", err)
	}
	return NewDoctorRepository(doctors)
}

func (r *DoctorRepository) ListDoctors(_ context.Context) ([]db.Doctor, error) {
	out := make([]db.Doctor, len(r.doctors))
	copy(out, r.doctors)
	return out, nil
}

func (r *DoctorRepository) GetDoctor(_ context.Context, id int) (*db.Doctor, error) {
	d, ok := r.byID[id]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("doctor %d not found", id))
	}
	return &d, nil
}
