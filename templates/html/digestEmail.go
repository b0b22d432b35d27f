package templates

import "fmt"

// RenderUnreadDigestEmail generates the HTML for the unread message digest email
func RenderUnreadDigestEmail(displayName string, count int64, baseURL, unsubscribeToken string) string {
	return fmt.Sprintf(`<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Strict//EN" "http://www.w3.org/TR/xhtml1/DTD/xhtml1-strict.dtd">
<html xmlns="http://www.w3.org/1999/xhtml">
<head>
  <meta http-equiv="Content-Type" content="text/html; charset=utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1, minimum-scale=1, maximum-scale=1">
  <title>Unread Messages - SchoolHub</title>
  <style type="text/css">
    body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; margin: 0; padding: 0; background-color: #f4f6fb; }
    .container { max-width: 600px; margin: 0 auto; background-color: #ffffff; }
    .header { background: linear-gradient(135deg, #3b82f6 0%%, #1d4ed8 100%%); padding: 40px 30px; text-align: center; }
    .header h1 { color: #fff; margin: 0; font-size: 24px; font-weight: 700; }
    .content { padding: 40px 30px; color: #374151; }
    .content h2 { color: #111827; margin-top: 0; }
    .count-box { background: rgba(59, 130, 246, 0.08); border: 1px solid rgba(59, 130, 246, 0.3); border-radius: 12px; padding: 20px; margin: 20px 0; text-align: center; }
    .count-box span { color: #1d4ed8; font-size: 32px; font-weight: 700; }
    .cta-button { display: inline-block; background: linear-gradient(135deg, #3b82f6 0%%, #1d4ed8 100%%); color: #fff; padding: 14px 28px; border-radius: 8px; text-decoration: none; font-weight: 700; margin-top: 20px; }
    .footer { padding: 20px 30px; color: #9ca3af; font-size: 12px; text-align: center; }
    .footer a { color: #6b7280; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header"><h1>SchoolHub Messages</h1></div>
    <div class="content">
      <h2>Hi %s,</h2>
      <p>You have unread messages waiting in your portal inbox.</p>
      <div class="count-box"><span>%d</span><br>unread message(s)</div>
      <a class="cta-button" href="%s">Open your inbox</a>
    </div>
    <div class="footer">
      You receive this digest because your school uses SchoolHub.
      <a href="%s/api/v1/digest/unsubscribe/%s">Stop receiving digest emails</a>
    </div>
  </div>
</body>
</html>`, displayName, count, baseURL, baseURL, unsubscribeToken)
}
