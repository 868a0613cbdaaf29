package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/alert"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/prescription"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/staff"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/theatre"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/token"
)

// Reader composes records with their relations by following foreign keys.
//
// Single reads fail with the missing relation's not-found error. List reads
// drop records whose relations cannot be resolved and log a warning, so one
// dangling reference never hides the rest of the list.
type Reader struct {
	s   Store
	log *zap.Logger
}

func NewReader(s Store, log *zap.Logger) *Reader {
	return &Reader{s: s, log: log}
}

func (r *Reader) Patient(ctx context.Context, id int64) (*PatientView, error) {
	p, err := r.s.Patients().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.patientView(ctx, p)
}

func (r *Reader) Patients(ctx context.Context) ([]*PatientView, error) {
	ps, err := r.s.Patients().List(ctx)
	if err != nil {
		return nil, err
	}
	return compose(ctx, r, "patient", ps, func(p *patient.Patient) int64 { return p.ID }, r.patientView)
}

func (r *Reader) Doctor(ctx context.Context, id int64) (*DoctorView, error) {
	d, err := r.s.Doctors().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.doctorView(ctx, d)
}

func (r *Reader) Doctors(ctx context.Context, q *staff.DoctorQuery) ([]*DoctorView, error) {
	ds, err := r.s.Doctors().List(ctx, q)
	if err != nil {
		return nil, err
	}
	return compose(ctx, r, "doctor", ds, func(d *staff.Doctor) int64 { return d.ID }, r.doctorView)
}

func (r *Reader) Nurse(ctx context.Context, id int64) (*NurseView, error) {
	n, err := r.s.Nurses().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.nurseView(ctx, n)
}

func (r *Reader) Nurses(ctx context.Context) ([]*NurseView, error) {
	ns, err := r.s.Nurses().List(ctx)
	if err != nil {
		return nil, err
	}
	return compose(ctx, r, "nurse", ns, func(n *staff.Nurse) int64 { return n.ID }, r.nurseView)
}

func (r *Reader) Pharmacists(ctx context.Context) ([]*PharmacistView, error) {
	ps, err := r.s.Pharmacists().List(ctx)
	if err != nil {
		return nil, err
	}
	return compose(ctx, r, "pharmacy_staff", ps, func(p *staff.Pharmacist) int64 { return p.ID }, r.pharmacistView)
}

func (r *Reader) Appointment(ctx context.Context, id int64) (*AppointmentView, error) {
	a, err := r.s.Appointments().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.AppointmentOf(ctx, a)
}

func (r *Reader) Appointments(ctx context.Context, q *appointment.ListQuery) ([]*AppointmentView, error) {
	as, err := r.s.Appointments().List(ctx, q)
	if err != nil {
		return nil, err
	}
	return compose(ctx, r, "appointment", as, func(a *appointment.Appointment) int64 { return a.ID }, r.AppointmentOf)
}

// AppointmentOf inlines the patient, doctor and department of a.
func (r *Reader) AppointmentOf(ctx context.Context, a *appointment.Appointment) (*AppointmentView, error) {
	p, err := r.Patient(ctx, a.PatientID)
	if err != nil {
		return nil, err
	}
	d, err := r.Doctor(ctx, a.DoctorID)
	if err != nil {
		return nil, err
	}
	dept, err := r.s.Departments().GetByID(ctx, a.DepartmentID)
	if err != nil {
		return nil, err
	}
	return &AppointmentView{Appointment: a, Patient: p, Doctor: d, Department: dept}, nil
}

func (r *Reader) Token(ctx context.Context, id int64) (*TokenView, error) {
	t, err := r.s.Tokens().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.TokenOf(ctx, t)
}

func (r *Reader) Tokens(ctx context.Context, q *token.ListQuery) ([]*TokenView, error) {
	ts, err := r.s.Tokens().List(ctx, q)
	if err != nil {
		return nil, err
	}
	return compose(ctx, r, "token", ts, func(t *token.Token) int64 { return t.ID }, r.TokenOf)
}

func (r *Reader) TokenOf(ctx context.Context, t *token.Token) (*TokenView, error) {
	a, err := r.Appointment(ctx, t.AppointmentID)
	if err != nil {
		return nil, err
	}
	dept, err := r.s.Departments().GetByID(ctx, t.DepartmentID)
	if err != nil {
		return nil, err
	}
	return &TokenView{Token: t, Appointment: a, Department: dept}, nil
}

func (r *Reader) Prescription(ctx context.Context, id int64) (*PrescriptionView, error) {
	p, err := r.s.Prescriptions().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.prescriptionView(ctx, p)
}

func (r *Reader) Prescriptions(ctx context.Context, q *prescription.ListQuery) ([]*PrescriptionView, error) {
	ps, err := r.s.Prescriptions().List(ctx, q)
	if err != nil {
		return nil, err
	}
	return compose(ctx, r, "prescription", ps, func(p *prescription.Prescription) int64 { return p.ID }, r.prescriptionView)
}

func (r *Reader) Surgery(ctx context.Context, id int64) (*SurgeryView, error) {
	sg, err := r.s.Surgeries().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.surgeryView(ctx, sg)
}

func (r *Reader) Surgeries(ctx context.Context, q *theatre.SurgeryQuery) ([]*SurgeryView, error) {
	ss, err := r.s.Surgeries().List(ctx, q)
	if err != nil {
		return nil, err
	}
	return compose(ctx, r, "surgery", ss, func(s *theatre.Surgery) int64 { return s.ID }, r.surgeryView)
}

func (r *Reader) Alerts(ctx context.Context, q *alert.ListQuery) ([]*AlertView, error) {
	as, err := r.s.Alerts().List(ctx, q)
	if err != nil {
		return nil, err
	}
	return compose(ctx, r, "emergency_alert", as, func(a *alert.EmergencyAlert) int64 { return a.ID }, r.alertView)
}

func (r *Reader) patientView(ctx context.Context, p *patient.Patient) (*PatientView, error) {
	u, err := r.s.Users().GetByID(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	return &PatientView{Patient: p, User: u}, nil
}

func (r *Reader) doctorView(ctx context.Context, d *staff.Doctor) (*DoctorView, error) {
	u, err := r.s.Users().GetByID(ctx, d.UserID)
	if err != nil {
		return nil, err
	}
	dept, err := r.s.Departments().GetByID(ctx, d.DepartmentID)
	if err != nil {
		return nil, err
	}
	return &DoctorView{Doctor: d, User: u, Department: dept}, nil
}

func (r *Reader) nurseView(ctx context.Context, n *staff.Nurse) (*NurseView, error) {
	u, err := r.s.Users().GetByID(ctx, n.UserID)
	if err != nil {
		return nil, err
	}
	dept, err := r.s.Departments().GetByID(ctx, n.DepartmentID)
	if err != nil {
		return nil, err
	}
	return &NurseView{Nurse: n, User: u, Department: dept}, nil
}

func (r *Reader) pharmacistView(ctx context.Context, p *staff.Pharmacist) (*PharmacistView, error) {
	u, err := r.s.Users().GetByID(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	return &PharmacistView{Pharmacist: p, User: u}, nil
}

func (r *Reader) prescriptionView(ctx context.Context, p *prescription.Prescription) (*PrescriptionView, error) {
	pt, err := r.Patient(ctx, p.PatientID)
	if err != nil {
		return nil, err
	}
	d, err := r.Doctor(ctx, p.DoctorID)
	if err != nil {
		return nil, err
	}
	return &PrescriptionView{Prescription: p, Patient: pt, Doctor: d}, nil
}

func (r *Reader) surgeryView(ctx context.Context, s *theatre.Surgery) (*SurgeryView, error) {
	pt, err := r.Patient(ctx, s.PatientID)
	if err != nil {
		return nil, err
	}
	d, err := r.Doctor(ctx, s.SurgeonID)
	if err != nil {
		return nil, err
	}
	th, err := r.s.Theatres().GetByID(ctx, s.TheatreID)
	if err != nil {
		return nil, err
	}
	return &SurgeryView{Surgery: s, Patient: pt, Surgeon: d, Theatre: th}, nil
}

func (r *Reader) alertView(ctx context.Context, a *alert.EmergencyAlert) (*AlertView, error) {
	u, err := r.s.Users().GetByID(ctx, a.CreatedBy)
	if err != nil {
		return nil, err
	}
	return &AlertView{EmergencyAlert: a, Creator: u}, nil
}

func compose[T, V any](
	ctx context.Context,
	r *Reader,
	kind string,
	items []T,
	id func(T) int64,
	build func(context.Context, T) (V, error),
) ([]V, error) {
	out := make([]V, 0, len(items))
	for _, item := range items {
		v, err := build(ctx, item)
		if err != nil {
			if IsNotFound(err) {
				r.log.Warn("omitting record with missing relation",
					zap.String("kind", kind),
					zap.Int64("id", id(item)),
					zap.Error(err),
				)
				continue
			}
			return nil, fmt.Errorf("composing %s %d: %w", kind, id(item), err)
		}
		out = append(out, v)
	}
	return out, nil
}
