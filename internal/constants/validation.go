package constants

// Password reset token size in random bytes (hex encoded on the wire)
const ResetTokenBytes = 32
