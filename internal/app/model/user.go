package model

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string // perfil de acesso do usuário

const (
	RoleUser  UserRole = "user"  // cliente da loja
	RoleAdmin UserRole = "admin" // administrador do painel
)

type User struct {
	ID           uint           `gorm:"primarykey" json:"id"`                        // ID do usuário
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`           // e-mail
	PasswordHash string         `gorm:"not null" json:"-"`                           // hash da senha
	Name         string         `gorm:"not null" json:"name"`                        // nome completo
	CPF          string         `gorm:"size:11;index" json:"cpf,omitempty"`          // CPF (somente dígitos)
	Phone        string         `json:"phone"`                                       // telefone (somente dígitos)
	Role         UserRole       `gorm:"type:varchar(20);default:'user'" json:"role"` // perfil
	CreatedAt    time.Time      `json:"created_at"`                                  // criação
	UpdatedAt    time.Time      `json:"updated_at"`                                  // última atualização
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                              // exclusão lógica

	Addresses []Address `gorm:"foreignKey:UserID" json:"addresses,omitempty"` // endereços cadastrados
}

func (User) TableName() string {
	return "users"
}
