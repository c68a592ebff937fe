package model

import (
	"time"

	"gorm.io/gorm"
)

type Address struct {
	ID         uint           `gorm:"primaryKey" json:"id"`               // ID do endereço
	UserID     uint           `gorm:"not null;index" json:"user_id"`      // dono do endereço
	Label      string         `gorm:"size:100" json:"label"`              // apelido (ex: "Casa", "Trabalho")
	Recipient  string         `gorm:"size:100;not null" json:"recipient"` // nome do destinatário
	Phone      string         `gorm:"size:30" json:"phone"`               // telefone de contato
	ZipCode    string         `gorm:"size:8;not null" json:"zip_code"`    // CEP (somente dígitos)
	Street     string         `gorm:"size:200;not null" json:"street"`    // logradouro
	Number     string         `gorm:"size:20;not null" json:"number"`     // número
	Complement string         `gorm:"size:100" json:"complement"`         // complemento
	District   string         `gorm:"size:100" json:"district"`           // bairro
	City       string         `gorm:"size:100;not null" json:"city"`      // cidade
	State      string         `gorm:"size:2;not null" json:"state"`       // UF
	IsDefault  bool           `gorm:"default:false" json:"is_default"`    // endereço padrão (único por usuário)
	CreatedAt  time.Time      `json:"created_at"`                         // criação
	UpdatedAt  time.Time      `json:"updated_at"`                         // última atualização
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`                     // exclusão lógica
}

func (Address) TableName() string {
	return "addresses"
}
