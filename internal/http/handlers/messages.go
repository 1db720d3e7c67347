package handlers

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// English text comes from the error itself; only translations live here.
var indonesian = map[string]string{
	"internal":                "terjadi kesalahan internal",
	"invalid_payload":         "payload tidak valid",
	"invalid_address":         "Alamat tidak valid",
	"invalid_owner":           "Alamat pemilik tidak valid",
	"invalid_scientist":       "Alamat ilmuwan tidak valid",
	"invalid_goal":            "Target harus > 0",
	"invalid_duration":        "Durasi harus > 0",
	"invalid_amount":          "Jumlah harus > 0",
	"amount_too_small":        "Jumlah terlalu kecil",
	"amount_overflow":         "Jumlah melebihi batas ledger",
	"description_required":    "Deskripsi wajib diisi",
	"invalid_milestone":       "Milestone tidak valid",
	"invalid_input":           "Input tidak valid",
	"only_owner":              "Hanya pemilik yang dapat memanggil",
	"unauthorized":            "Identitas pemanggil diperlukan",
	"faucet_disabled":         "Faucet tidak aktif",
	"paused":                  "Kontrak sedang dijeda",
	"not_paused":              "Kontrak tidak sedang dijeda",
	"already_completed":       "Sudah selesai",
	"milestone_not_completed": "Milestone belum selesai",
	"already_released":        "Dana sudah dicairkan",
	"already_voted":           "Sudah memberikan suara",
	"no_voting_power":         "Tidak memiliki hak suara",
	"voting_closed":           "Pemungutan suara ditutup",
	"vote_not_passed":         "Pemungutan suara tidak lolos",
	"cannot_refund":           "Tidak dapat mengembalikan dana",
	"no_donation":             "Tidak ada donasi untuk dikembalikan",
	"already_refunded":        "Dana sudah dikembalikan",
	"already_failed":          "Proyek sudah gagal",
	"project_failed":          "Proyek gagal",
	"project_closed":          "Proyek ditutup",
	"invalid_transition":      "Perubahan status tidak valid",
	"insufficient_balance":    "Saldo tidak mencukupi",
	"insufficient_allowance":  "Allowance tidak mencukupi",
	"transfer_failed":         "Transfer token gagal",
	"funding_ended":           "Pendanaan telah berakhir",
	"refund_not_available":    "Pengembalian dana belum tersedia",
	"not_found":               "tidak ditemukan",
}

var messages = newCatalog()

func newCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for code, msg := range indonesian {
		_ = b.SetString(language.Indonesian, code, msg)
	}
	return b
}

// localize returns the translation of code for locale, or fallback.
func localize(locale, code, fallback string) string {
	tag, err := language.Parse(locale)
	if err != nil {
		return fallback
	}
	p := message.NewPrinter(tag, message.Catalog(messages))
	if out := p.Sprintf(code); out != code {
		return out
	}
	return fallback
}
