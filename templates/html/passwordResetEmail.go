package templates

import "fmt"

// RenderPasswordResetEmail generates the HTML for the temporary password
// email sent after an admin resets a user's password
func RenderPasswordResetEmail(fullName, tempPassword string) string {
	return fmt.Sprintf(`<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Strict//EN" "http://www.w3.org/TR/xhtml1/DTD/xhtml1-strict.dtd">
<html xmlns="http://www.w3.org/1999/xhtml">
<head>
  <meta http-equiv="Content-Type" content="text/html; charset=utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1, minimum-scale=1, maximum-scale=1">
  <title>Password Reset - SportsHub</title>
  <style type="text/css">
    body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; margin: 0; padding: 0; background-color: #f3f4f6; }
    .container { max-width: 600px; margin: 0 auto; background-color: #ffffff; }
    .header { background: linear-gradient(135deg, #2563eb 0%%, #1d4ed8 100%%); padding: 40px 30px; text-align: center; }
    .header h1 { color: #fff; margin: 0; font-size: 24px; font-weight: 700; }
    .content { padding: 40px 30px; color: #374151; }
    .content h2 { color: #111827; margin-top: 0; }
    .password-box { background: #eff6ff; border: 1px solid #bfdbfe; border-radius: 12px; padding: 20px; margin: 20px 0; text-align: center; }
    .password-box code { color: #1d4ed8; font-size: 20px; font-weight: 700; letter-spacing: 1px; }
    .footer { padding: 30px; text-align: center; color: #6b7280; font-size: 12px; border-top: 1px solid #e5e7eb; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>🔑 Password Reset</h1>
    </div>
    <div class="content">
      <h2>Hi %s,</h2>
      <p>An administrator has reset the password for your <strong>SportsHub</strong> account. Use the temporary password below to sign in:</p>
      <div class="password-box">
        <code>%s</code>
      </div>
      <p>All of your existing sessions have been signed out. Please log in and change this password right away.</p>
      <p>If you did not expect this reset, contact the sports office immediately.</p>
    </div>
    <div class="footer">
      <p>SportsHub College Sports Event Management</p>
    </div>
  </div>
</body>
</html>`, fullName, tempPassword)
}
