package entity

// 系统内置角色，角色到权限的映射是静态配置（见 engine 包）
const (
	RoleAdmin                = "Admin"
	RoleManufacturingManager = "ManufacturingManager"
	RoleOperator             = "Operator"
	RoleInventoryManager     = "InventoryManager"
)

// User 系统用户
type User struct {
	Base
	Email        string `json:"email" gorm:"size:255;not null;uniqueIndex"`
	PasswordHash string `json:"-" gorm:"size:255;not null"`
	FirstName    string `json:"first_name" gorm:"size:100;not null"`
	LastName     string `json:"last_name" gorm:"size:100;not null"`
	Role         string `json:"role" gorm:"size:50;not null"`
	Avatar       string `json:"avatar,omitempty" gorm:"size:500"`
	IsActive     bool   `json:"is_active" gorm:"default:true"`
}

func (User) TableName() string {
	return "users"
}

// FullName 姓名
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
