package report

// Fixed replies.
const (
	Help = `🤖 WhatsApp Finance Bot - Bantuan

📝 MENCATAT TRANSAKSI:
• /pemasukan [jumlah] [deskripsi] ke pocket [nama]
  Contoh: /pemasukan 500rb gaji bulanan ke pocket utama

• /pengeluaran [jumlah] [deskripsi] dari pocket [nama]
  Contoh: /pengeluaran 25rb makan siang dari pocket harian

💰 FORMAT JUMLAH:
• 10rb = 10.000 • 100k = 100.000 • 1jt = 1.000.000

👝 POCKET MANAGEMENT:
• "Saldo pocket [nama]" - Lihat saldo pocket tertentu
• "Saldo pocket" - Lihat semua pocket
• "List pocket" - Daftar semua pocket
• "Transfer 100rb dari pocket utama ke pocket harian"

📊 MELIHAT LAPORAN:
• "Berapa pengeluaran minggu ini?"
• "Total pemasukan bulan ini"
• "Laporan keuangan tahun ini"
• "Pengeluaran hari ini"

💡 TIPS POCKET:
• Pocket otomatis dibuat saat transaksi pertama
• Contoh nama pocket: utama, harian, bulanan, darurat
• Bot akan cek saldo pocket sebelum pengeluaran
• Transfer antar pocket untuk mengatur uang

Ketik /help untuk melihat pesan ini lagi.`

	RecordFormatHint = `Format tidak valid. Gunakan:
📥 /pemasukan [jumlah] [deskripsi] ke pocket [nama_pocket]
📤 /pengeluaran [jumlah] [deskripsi] dari pocket [nama_pocket]

Contoh:
• /pemasukan 500rb gaji bulanan ke pocket utama
• /pengeluaran 25rb makan siang dari pocket harian`

	AmountFormatHint = "Format jumlah tidak valid. Contoh: 10rb, 100k, 50000"

	TransferFormatHint = `Format transfer tidak valid. Gunakan:
"Transfer [jumlah] dari pocket [asal] ke pocket [tujuan]"

Contoh:
• Transfer 100rb dari pocket utama ke pocket harian
• Transfer 50k dari pocket bulanan ke pocket darurat`

	QueryUsageHint = `Maaf, saya tidak mengerti permintaan Anda.

🔍 Perintah yang tersedia:
• "Berapa pengeluaran minggu ini?"
• "Saldo pocket utama"
• "List pocket"
• "Transfer 100rb dari pocket utama ke pocket harian"

Ketik /help untuk melihat semua perintah.`
)

// Apologies sent when the store or oracle fails.
const (
	RecordFailed        = "Terjadi kesalahan saat memproses transaksi. Silakan coba lagi."
	QueryFailed         = "Terjadi kesalahan saat mengambil data. Silakan coba lagi."
	PocketBalanceFailed = "Terjadi kesalahan saat mengambil saldo pocket."
	PocketListFailed    = "Terjadi kesalahan saat mengambil daftar pocket."
	TransferFailed      = "Terjadi kesalahan saat transfer antar pocket."
)
