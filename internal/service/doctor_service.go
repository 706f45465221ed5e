package service

import (
	"context"

	"clinicbooking/internal/db"
)

type DoctorDirectory interface {
	ListDoctors(ctx context.Context) ([]db.Doctor, error)
	GetDoctor(ctx context.Context, id int) (*db.Doctor, error)
}

type DoctorService struct {
	Directory DoctorDirectory
}

func NewDoctorService(directory DoctorDirectory) *DoctorService {
	return &DoctorService{Directory: directory}
}

func (s *DoctorService) ListDoctors(ctx context.Context) ([]db.Doctor, error) {
	return s.Directory.ListDoctors(ctx)
}

func (s *DoctorService) GetDoctor(ctx context.Context, id int) (*db.Doctor, error) {
	return s.Directory.GetDoctor(ctx, id)
}
