package commons

import "context"

// Campaigns returns the campaigns feed
func (c *Client) Campaigns(ctx context.Context) (*CampaignResponse, error) {
	var resp CampaignResponse
	if err := c.getJSON(ctx, serviceCampaigns, "campaigns", c.endpoints.CampaignsURL, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
