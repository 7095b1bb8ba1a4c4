package hotel

import (
	"context"

	"github.com/nao1215/hotelops/pkg/apiclient"
)

// EmployeeInput は従業員作成のペイロード。
type EmployeeInput struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	Email      string `json:"email"`
	FullName   string `json:"full_name"`
	Role       string `json:"role"`
	Department string `json:"department,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

// Employees はGET /employees/ を呼び出す。roleが空でなければ役割で絞り込む。
func (s *Service) Employees(ctx context.Context, role string) (apiclient.Envelope, error) {
	return s.get(ctx, withQuery("/employees/", "role", role))
}

// EmployeesByDepartment はGET /employees/by-department/{department} を呼び出す。
func (s *Service) EmployeesByDepartment(ctx context.Context, department string) (apiclient.Envelope, error) {
	return s.get(ctx, "/employees/by-department/"+segment(department))
}

// Employee はGET /employees/{id} を呼び出す。
func (s *Service) Employee(ctx context.Context, employeeID int64) (apiclient.Envelope, error) {
	return s.get(ctx, "/employees/"+id(employeeID))
}

// CreateEmployee はPOST /employees/ を呼び出す。
func (s *Service) CreateEmployee(ctx context.Context, in EmployeeInput) (apiclient.Envelope, error) {
	return s.post(ctx, "/employees/", in)
}

// UpdateEmployee はPUT /employees/{id} を呼び出す。fieldsには更新する項目のみを渡す。
func (s *Service) UpdateEmployee(ctx context.Context, employeeID int64, fields map[string]any) (apiclient.Envelope, error) {
	return s.put(ctx, "/employees/"+id(employeeID), fields)
}

// DeactivateEmployee はPUT /employees/{id}/deactivate を呼び出す。
func (s *Service) DeactivateEmployee(ctx context.Context, employeeID int64) (apiclient.Envelope, error) {
	return s.put(ctx, "/employees/"+id(employeeID)+"/deactivate", nil)
}
